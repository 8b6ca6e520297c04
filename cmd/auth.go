package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/coursecast/coursecast/auth"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the catalog API token",
	Long: `The catalog API token lives in the system keyring and is sent as a bearer token
with every catalog request.`,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authLoginCmd.Flags().StringP("token", "t", "", "Token to store instead of prompting for it")
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a catalog API token",
	Run: func(cmd *cobra.Command, args []string) {
		token := lo.Must(cmd.Flags().GetString("token"))

		if token == "" {
			prompt := &survey.Password{
				Message: fmt.Sprintf("Token for %s", viper.GetString(key.CatalogBaseURL)),
			}
			handleErr(survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetToken(token))
		log.Info("catalog token stored")
		fmt.Printf("%s token stored\n", style.Fg(style.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored catalog API token",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s token removed\n", style.Fg(style.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Tell whether a catalog API token is stored",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := auth.Token()
		switch {
		case errors.Is(err, auth.ErrNoToken):
			fmt.Println(style.Fg(style.Yellow)("not logged in"))
		case err != nil:
			handleErr(err)
		default:
			fmt.Println(style.Fg(style.Green)("logged in"))
		}
	},
}
