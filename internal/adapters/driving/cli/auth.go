package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage backend authentication",
	Long: `Sign in to the metatext backend with an access token, inspect who
you are signed in as, or sign out.

Signed-in users get their reading position restored across devices;
anonymous use keeps everything on this machine only.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with an access token",
	Long: `Sign in with a backend access token. The token is read from the
--token flag, or prompted for without echo when the flag is omitted.`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored token",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who you are signed in as",
	RunE:  runAuthStatus,
}

// loginToken is the --token flag for non-interactive login.
var loginToken string

func init() {
	authLoginCmd.Flags().StringVar(&loginToken, "token", "", "Access token (prompted for if omitted)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	token := loginToken
	if token == "" {
		cmd.Print("Access token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		token = string(raw)
	}

	user, err := authService.Login(cmd.Context(), token)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Signed in as %s.\n", user.Email)
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	if err := authService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	cmd.Println("Signed out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	user, err := authService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read auth status: %w", err)
	}

	if user == nil {
		cmd.Println("Not signed in. Reading positions stay on this machine.")
		return nil
	}

	cmd.Printf("Signed in as %s (user %d).\n", user.Email, user.ID)
	return nil
}
