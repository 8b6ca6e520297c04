package cmd

import (
	"fmt"

	"github.com/coursecast/coursecast/catalog"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/util"
	"github.com/coursecast/coursecast/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	clear    func() error
}

func removeDir(location func() string) func() error {
	return func() error {
		return filesystem.API().RemoveAll(location())
	}
}

var clearTargets = []clearTarget{
	{"catalog cache", "catalog", mo.Some("c"), func() error { return catalog.FromConfig().ClearCache() }},
	{"cache directory", "cache", mo.None[string](), removeDir(where.Cache)},
	{"temp directory", "temp", mo.Some("t"), removeDir(where.Temp)},
	{"logs", "logs", mo.Some("l"), removeDir(where.Logs)},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached and temporary files",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := target.clear()
			erase()
			handleErr(err)
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
