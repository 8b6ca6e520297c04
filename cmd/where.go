package cmd

import (
	"os"

	"github.com/coursecast/coursecast/open"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Providers", where.Providers, "providers", mo.None[string](), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"Cache", where.Cache, "cache", mo.None[string](), true},
	{"Temp", where.Temp, "temp", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if n.argShort.IsPresent() {
			whereCmd.Flags().BoolP(n.argLong, n.argShort.MustGet(), false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.argLong, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.argLong))
		}
	}

	whereCmd.Flags().BoolP("open", "o", false, "Open the selected directory in the file manager")

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print the directories coursecast uses",
	Run: func(cmd *cobra.Command, args []string) {
		headerStyle := style.New().Bold(true).Foreground(style.Purple).Render

		for _, n := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(n.argLong)) {
				path := n.where()
				if lo.Must(cmd.Flags().GetBool("open")) {
					handleErr(open.Start(path))
				}
				cmd.Println(path)
				return
			}
		}

		visible := lo.Filter(wherePaths, func(t *whereTarget, _ int) bool {
			return !t.hidden
		})

		for i, n := range visible {
			cmd.Printf("%s %s\n", headerStyle(n.name+"?"), style.Fg(style.Yellow)("--"+n.argLong))
			cmd.Println(n.where())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
