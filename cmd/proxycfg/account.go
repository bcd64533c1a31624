package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/muurk/proxycfg/internal/auth"
	"github.com/muurk/proxycfg/internal/ui"
)

var (
	loginEmail    string
	loginPassword string
	regUsername   string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
		c.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	}
	registerCmd.Flags().StringVar(&regUsername, "username", "", "Account username (prompted when omitted)")
}

func newAuthenticator() *auth.Authenticator {
	return auth.NewAuthenticator(client, session)
}

// askMissing prompts for every credential that was not given as a flag.
func askMissing(withUsername bool) error {
	var qs []*survey.Question
	if withUsername && regUsername == "" {
		qs = append(qs, &survey.Question{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		})
	}
	if loginEmail == "" {
		qs = append(qs, &survey.Question{
			Name:     "email",
			Prompt:   &survey.Input{Message: "Email:"},
			Validate: survey.Required,
		})
	}
	if loginPassword == "" {
		qs = append(qs, &survey.Question{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.Required,
		})
	}
	if len(qs) == 0 {
		return nil
	}

	answers := struct {
		Username string
		Email    string
		Password string
	}{regUsername, loginEmail, loginPassword}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}
	regUsername, loginEmail, loginPassword = answers.Username, answers.Email, answers.Password
	return nil
}

// formError reports local validation failures without a failure box.
func formError(err error) error {
	var fe auth.FieldErrors
	if errors.As(err, &fe) {
		return fmt.Errorf("invalid input: %s", fe.Error())
	}
	return nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the agent and store the token",
	Long: `Log in with an email and password. The issued token is stored in the
settings file and used by every other command and by the editor.`,
	Example: `  proxycfg login
  proxycfg login --server http://10.0.0.2:8080 --email admin@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := askMissing(false); err != nil {
			return err
		}

		stop := startSpinner("Logging in to " + client.BaseURL + "...")
		err := newAuthenticator().Login(cmd.Context(), loginEmail, loginPassword)
		stop()
		if ferr := formError(err); ferr != nil {
			return ferr
		}
		if err != nil {
			return reportError("Login failed", err)
		}

		ui.NewPrinter(nil).PrintSuccess("Logged in", []ui.Detail{
			{Key: "Agent", Value: client.BaseURL},
			{Key: "Email", Value: loginEmail},
			{Key: "Settings", Value: settings.Path()},
		})
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !session.Authenticated() {
			fmt.Println("Not logged in.")
			return nil
		}
		if err := newAuthenticator().Logout(); err != nil {
			return err
		}
		fmt.Println("✓ Logged out")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the agent",
	Long: `Create an account with a username, email and password. Passwords need
at least 8 characters. Log in afterwards with 'proxycfg login'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := askMissing(true); err != nil {
			return err
		}

		stop := startSpinner("Registering...")
		detail, err := newAuthenticator().Register(cmd.Context(), regUsername, loginEmail, loginPassword)
		stop()
		if ferr := formError(err); ferr != nil {
			return ferr
		}
		if err != nil {
			return reportError("Registration failed", err)
		}

		if detail == "" {
			detail = "Registration complete"
		}
		ui.NewPrinter(nil).PrintSuccess(detail, []ui.Detail{
			{Key: "Agent", Value: client.BaseURL},
			{Key: "Username", Value: regUsername},
			{Key: "Next", Value: "proxycfg login --email " + loginEmail},
		})
		return nil
	},
}
