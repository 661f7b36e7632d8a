package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Microsoft to use the workbook backend",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached sign-in",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect the Microsoft sign-in",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a valid token is cached",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	authn, err := a.authenticator()
	if err != nil {
		return err
	}

	pair, err := authn.Authenticate(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if name, err := auth.NameFromToken(pair.AccessToken); err == nil {
		fmt.Fprintf(out, "Signed in as %s.\n", name)
	} else {
		fmt.Fprintln(out, "Signed in.")
	}
	fmt.Fprintf(out, "Token valid until %s.\n", pair.ExpiresAt().Local().Format(time.DateTime))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	authn, err := a.buildAuthenticator(a.clientSecret())
	if err != nil {
		return err
	}
	if err := authn.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

// auth status only reads the token store and never talks to the provider,
// so it works without a client secret.
func runAuthStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	authn, err := a.buildAuthenticator(a.clientSecret())
	if err != nil {
		return err
	}
	state, pair, err := authn.Inspect()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "State:   %s\n", stateColor(state).Sprint(state))
	if pair == nil {
		fmt.Fprintln(out, "Run `adolog login` to sign in.")
		return nil
	}
	fmt.Fprintf(out, "Expires: %s\n", pair.ExpiresAt().Local().Format(time.DateTime))
	fmt.Fprintf(out, "Refresh: %t\n", pair.RefreshToken != "")
	if name, err := auth.NameFromToken(pair.AccessToken); err == nil {
		fmt.Fprintf(out, "User:    %s\n", name)
	}
	return nil
}

func stateColor(s auth.State) *color.Color {
	switch s {
	case auth.StateValid:
		return color.New(color.FgGreen)
	case auth.StateExpiring:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
