package cmd

import (
	"os"

	"github.com/coursecast/coursecast/config"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Show only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Show only variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// exposedEnv lists every environment variable coursecast reads, sorted.
func exposedEnv() []string {
	names := lo.Map(config.EnvExposed, func(k string, _ int) string {
		field := config.Default[k]
		return field.Env()
	})
	names = append(names, where.EnvConfigPath)
	slices.Sort(names)
	return names
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables coursecast reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, env := range exposedEnv() {
			value, present := os.LookupEnv(env)

			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.New().Bold(true).Foreground(style.Purple).Render(env))
			cmd.Print("=")

			if present {
				cmd.Println(style.Fg(style.Green)(value))
			} else {
				cmd.Println(style.Fg(style.Red)("unset"))
			}
		}
	},
}
