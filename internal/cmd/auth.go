package cmd

import (
	"github.com/spf13/cobra"

	"github.com/0xAcousticbridge/GAID/pkg/output"
	"github.com/0xAcousticbridge/GAID/pkg/prompter"
)

// ask opens the prompter commands read missing input from. Tests replace it.
var ask = prompter.Stdio

var (
	authEmail    string
	authPassword string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in, create an account and manage the stored session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialsInput()
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			user, err := a.svc.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			name := user.Email
			if p := a.store.State().Profile; p != nil && p.Username != "" {
				name = p.Username
			}
			output.PrintSuccess("Signed in as %s", name)
			return nil
		})
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialsInput()
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			res, err := a.svc.Auth.SignUp(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if res.ConfirmationRequired {
				output.PrintInfo("Check your email to confirm your account, then run 'goodaideas auth login'")
				return nil
			}
			output.PrintSuccess("Account created for %s", res.User.Email)
			output.PrintInfo("Run 'goodaideas onboarding step' to set up your preferences")
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.svc.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			output.PrintSuccess("Signed out")
			return nil
		})
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Display the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			user, err := a.svc.Auth.Me()
			if err != nil {
				return err
			}
			return printUser(user, a.store.State().Profile)
		})
	},
}

func credentialsInput() (string, string, error) {
	email, password := authEmail, authPassword
	if email != "" && password != "" {
		return email, password, nil
	}
	p := ask()
	var err error
	if email == "" {
		if email, err = p.String("Email", ""); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = p.Password("Password"); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email (prompted when omitted)")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")
	}

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(signupCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
}
