package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/provider"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/util"
	"github.com/coursecast/coursecast/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(providersCmd)
}

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"sources"},
	Short:   "Manage descriptor providers",
}

func init() {
	providersCmd.AddCommand(providersListCmd)

	providersListCmd.Flags().BoolP("raw", "r", false, "Print names only")
	providersListCmd.Flags().BoolP("custom", "c", false, "List only Lua providers")
	providersListCmd.Flags().BoolP("builtin", "b", false, "List only built-in providers")

	providersListCmd.MarkFlagsMutuallyExclusive("custom", "builtin")
	providersListCmd.SetOut(os.Stdout)
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available providers",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader := !lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := style.New().Foreground(style.Blue).Bold(true).Render
		h := func(s string) {
			if printHeader {
				cmd.Println(headerStyle(s))
			}
		}

		printBuiltin := func() {
			h("Builtin:")
			for _, p := range provider.Builtins() {
				cmd.Println(p.Name)
			}
		}

		printCustom := func() {
			h("Custom:")
			for _, p := range provider.Customs() {
				cmd.Println(p.Name)
			}
		}

		switch {
		case lo.Must(cmd.Flags().GetBool("builtin")):
			printBuiltin()
		case lo.Must(cmd.Flags().GetBool("custom")):
			printCustom()
		default:
			printBuiltin()
			if printHeader {
				cmd.Println()
			}
			printCustom()
		}
	},
}

func init() {
	providersCmd.AddCommand(providersRemoveCmd)

	providersRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Name of the Lua provider to remove")
	lo.Must0(providersRemoveCmd.RegisterFlagCompletionFunc("name", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(provider.Customs(), func(p *provider.Provider, _ int) string {
			return p.Name
		}), cobra.ShellCompDirectiveNoFileComp
	}))
}

var providersRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove Lua providers",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			path := filepath.Join(where.Providers(), name+provider.CustomProviderExtension)
			handleErr(filesystem.API().Remove(path))
			fmt.Printf("%s removed %s\n", icon.Get(icon.Success), style.Fg(style.Yellow)(name))
		}
	},
}

func init() {
	providersCmd.AddCommand(providersNewCmd)

	providersNewCmd.Flags().StringP("name", "n", "", "Display name of the provider")
	providersNewCmd.Flags().StringP("url", "u", "", "Base URL of the site the provider reads from")
}

var providersNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold a Lua provider script",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		answers := struct {
			Name string
			URL  string
		}{
			Name: lo.Must(cmd.Flags().GetString("name")),
			URL:  lo.Must(cmd.Flags().GetString("url")),
		}

		var questions []*survey.Question
		if answers.Name == "" {
			questions = append(questions, &survey.Question{
				Name:     "name",
				Prompt:   &survey.Input{Message: "Provider name"},
				Validate: survey.Required,
			})
		}
		if answers.URL == "" {
			questions = append(questions, &survey.Question{
				Name:     "url",
				Prompt:   &survey.Input{Message: "Base URL"},
				Validate: survey.Required,
			})
		}
		if len(questions) > 0 {
			handleErr(survey.Ask(questions, &answers))
		}

		author := "Anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		target, err := scaffoldProvider(where.Providers(), answers.Name, answers.URL, author)
		handleErr(err)

		cmd.Println(target)
	},
}

// scaffoldProvider writes a provider script named after name into dir and
// returns its path.
func scaffoldProvider(dir, name, url, author string) (string, error) {
	s := struct {
		Name           string
		URL            string
		Author         string
		SearchVideosFn string
		VideoByIDFn    string
	}{
		Name:           strings.TrimSpace(name),
		URL:            strings.TrimSpace(url),
		Author:         author,
		SearchVideosFn: constant.SearchVideosFn,
		VideoByIDFn:    constant.VideoByIDFn,
	}

	tmpl, err := template.New("provider").Funcs(template.FuncMap{
		"repeat": strings.Repeat,
		"plus":   func(a, b int) int { return a + b },
		"max":    util.Max[int],
	}).Parse(constant.ProviderTemplate)
	if err != nil {
		return "", err
	}

	filename := util.SanitizeFilename(s.Name)
	if filename == "" {
		return "", fmt.Errorf("invalid provider name %q", name)
	}

	target := filepath.Join(dir, filename+provider.CustomProviderExtension)
	if exists, _ := filesystem.API().Exists(target); exists {
		return "", fmt.Errorf("%s already exists", target)
	}

	f, err := filesystem.API().Create(target)
	if err != nil {
		return "", err
	}
	defer util.Ignore(f.Close)

	if err := tmpl.Execute(f, s); err != nil {
		return "", err
	}

	return target, nil
}
