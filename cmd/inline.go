package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"reflect"

	"github.com/coursecast/coursecast/catalog"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/inline"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/query"
	"github.com/coursecast/coursecast/source"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "Search query")
	inlineCmd.Flags().StringP("video", "i", "", "Look up a single video by id")
	inlineCmd.Flags().StringP("pick", "k", "", "Which of the found videos to plan for")
	inlineCmd.Flags().BoolP("json", "j", false, "Print the result as json")
	inlineCmd.Flags().StringP("output", "o", "", "Write the result to this file instead of stdout")

	inlineCmd.MarkFlagsMutuallyExclusive("query", "video")
	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("query", completionQueries))
	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("pick", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"first", "last"}, cobra.ShellCompDirectiveNoFileComp
	}))
}

var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Print how videos would be played without opening a player",
	Long: `Look videos up and print, for each one, the playback strategies in the order they would be attempted.

Pickers:
  first - first video in the list
  last - last video in the list
  [number] - select video by index (starting from 0)
  [id or title] - select video by exact id or title`,
	Example: "  coursecast inline -q \"go concurrency\" --pick first --json",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("query") && !cmd.Flags().Changed("video") {
			handleErr(errors.New("either --query or --video is required"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		providers, err := selectedProviders()
		handleErr(err)

		sources := make([]source.Source, 0, len(providers))
		for _, p := range providers {
			src, err := p.CreateSource()
			handleErr(err)
			sources = append(sources, src)
		}

		var out io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			file, err := filesystem.API().Create(output)
			handleErr(err)
			defer file.Close()
			out = file
		}

		picker := mo.None[inline.VideoPicker]()
		if pick := lo.Must(cmd.Flags().GetString("pick")); pick != "" {
			fn, err := inline.ParseVideoPicker(pick)
			handleErr(err)
			picker = mo.Some(fn)
		}

		element, err := player.New(viper.GetString(key.Player))
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		q := lo.Must(cmd.Flags().GetString("query"))

		handleErr(inline.Run(ctx, &inline.Options{
			Out:       out,
			Sources:   sources,
			Query:     q,
			VideoID:   lo.Must(cmd.Flags().GetString("video")),
			Picker:    picker,
			Json:      lo.Must(cmd.Flags().GetBool("json")),
			MediaBase: catalog.MediaBaseURL(),
			Element:   element,
			Probe:     playback.ProbeFromConfig(),
		}))

		if q != "" {
			_ = query.Remember(q, 1)
		}
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of inline --json output",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(json.NewEncoder(os.Stdout).Encode(outputSchema()))
	},
}

func outputSchema() *jsonschema.Schema {
	strategies := lo.Map(playback.Strategies(), func(s playback.Strategy, _ int) any {
		return s.String()
	})

	reflector := &jsonschema.Reflector{
		Anonymous: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(playback.Strategy(0)) {
				return &jsonschema.Schema{Type: "string", Enum: strategies}
			}
			return nil
		},
	}

	return reflector.Reflect(&inline.Output{})
}
