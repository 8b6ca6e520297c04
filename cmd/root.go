// Package cmd is the coursecast command line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/coursecast/coursecast/catalog"
	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/engine/hls"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/provider"
	"github.com/coursecast/coursecast/query"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/tui"
	"github.com/coursecast/coursecast/util"
	"github.com/coursecast/coursecast/version"
	"github.com/coursecast/coursecast/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant (emoji, nerd, plain, kaomoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("provider", "p", "", "Descriptor provider to search. Use \"all\" to search every provider")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("provider", completionProviders))
	lo.Must0(viper.BindPFlag(key.ProvidersDefault, rootCmd.PersistentFlags().Lookup("provider")))

	rootCmd.PersistentFlags().StringP("player", "P", "", "Media element to play in")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("player", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return player.Available(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.Player, rootCmd.PersistentFlags().Lookup("player")))

	rootCmd.Flags().StringP("query", "q", "", "Search for this right away")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("query", completionQueries))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// stale player sockets from a previous run
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

var rootCmd = &cobra.Command{
	Use:   constant.Coursecast,
	Short: "Watch course videos from the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(style.AccentColor).Render("    - Watch course videos from the terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		providers, err := selectedProviders()
		handleErr(err)

		loader := hls.NewLoader(nil)
		defer util.Ignore(loader.Close)

		options := tui.Options{
			Providers: providers,
			Query:     lo.Must(cmd.Flags().GetString("query")),
			MediaBase: catalog.MediaBaseURL(),
			NewWindow: func() (player.Window, error) {
				return player.New(viper.GetString(key.Player))
			},
			Guard: guardOptions(loader),
		}
		handleErr(tui.Run(&options))
	},
}

// guardOptions configures the playback controller from viper.
func guardOptions(loader engine.Loader) []playback.Option {
	return []playback.Option{
		playback.WithProbe(playback.ProbeFromConfig()),
		playback.WithLoader(loader),
		playback.WithEngineConfig(engine.FromViper()),
	}
}

// selectedProviders resolves providers.default, where "all" means every
// registered provider.
func selectedProviders() ([]*provider.Provider, error) {
	if strings.EqualFold(viper.GetString(key.ProvidersDefault), "all") {
		return provider.All(), nil
	}

	p, err := provider.Default()
	if err != nil {
		return nil, err
	}
	return []*provider.Provider{p}, nil
}

func completionProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := lo.Map(provider.All(), func(p *provider.Provider, _ int) string {
		return p.Name
	})
	return append(names, "all"), cobra.ShellCompDirectiveNoFileComp
}

func completionQueries(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
}

// Execute runs the root command.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiMagenta + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
