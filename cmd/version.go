package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version")
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(style.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify()

		info := struct {
			App      string
			Version  string
			OS       string
			Arch     string
			BuiltAt  string
			BuiltBy  string
			Revision string
		}{
			App:      constant.Coursecast,
			Version:  constant.Version,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Revision: constant.Revision,
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
