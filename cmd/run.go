package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/coursecast/coursecast/catalog"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/provider/custom"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("query", "q", "", "Call the search function with this query")
	runCmd.Flags().StringP("video", "i", "", "Call the video lookup function with this id")
	runCmd.MarkFlagsMutuallyExclusive("query", "video")
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Load a Lua provider script and optionally call it",
	Long: `Load a Lua provider script, check that it defines the required functions and,
with --query or --video, print what it returns. Useful while writing a provider.`,
	Args:    cobra.ExactArgs(1),
	Example: "  coursecast run ./myschool.lua -q intro",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := custom.LoadSource(args[0])
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		base := catalog.MediaBaseURL()

		switch {
		case cmd.Flags().Changed("query"):
			videos, err := src.Search(ctx, lo.Must(cmd.Flags().GetString("query")))
			handleErr(err)
			for _, v := range videos {
				printVideo(v, base)
			}
		case cmd.Flags().Changed("video"):
			v, err := src.VideoOf(ctx, lo.Must(cmd.Flags().GetString("video")))
			handleErr(err)
			printVideo(v, base)
		default:
			fmt.Printf("%s %s loaded\n", icon.Get(icon.Success), src.Name())
		}
	},
}

func printVideo(v *source.Video, base string) {
	src, err := v.VideoSource(base)
	if err != nil {
		fmt.Printf("%s\t%s\t%s\n", v.ID, v.Title, style.Fg(style.Red)(err.Error()))
		return
	}
	fmt.Printf("%s\t%s\t%s\n", v.ID, v.Title, style.Faint(src.String()))
}
