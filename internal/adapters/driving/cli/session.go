package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/catalyst-match/identity/internal/adapters/driving/consent"
	"github.com/catalyst-match/identity/internal/core/domain"
)

// loginTimeout caps how long the login command waits for the provider
// redirect before giving up.
const loginTimeout = 5 * time.Minute

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google",
	Long: `Signs in through the Google authorization flow.

Opens your browser at the provider consent screen, waits for the redirect
on the registered callback port and exchanges the authorization code for a
session. The session is persisted; a second login replaces the first.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if signInService == nil {
		return errors.New("sign-in service not configured")
	}

	authURL, err := signInService.BeginSignIn()
	if err != nil {
		return fmt.Errorf("begin sign-in: %w", err)
	}

	port, err := redirectPort(loginRedirectURI)
	if err != nil {
		return fmt.Errorf("bad redirect uri: %w", err)
	}

	server := consent.NewCallbackServer(port)
	if err := server.Start(); err != nil {
		return fmt.Errorf("callback listener: %w", err)
	}
	defer server.Stop() //nolint:errcheck // shutdown is best effort

	cmd.Println("Opening your browser to sign in...")
	if err := consent.OpenBrowser(authURL); err != nil {
		cmd.Println("Could not open a browser. Visit this URL to continue:")
		cmd.Println(authURL)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	query, err := server.WaitForCallback(ctx)
	if err != nil {
		return fmt.Errorf("sign-in did not complete: %w", err)
	}

	session, err := signInService.CompleteSignIn(ctx, query)
	if err != nil {
		cmd.PrintErrln(domain.Describe(err))
		return err
	}

	cmd.Printf("Signed in as %s <%s>\n", session.DisplayName, session.Email)
	cmd.Printf("Landing destination: %s\n", domain.RouteForRole(session.Role))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if signInService == nil {
		return errors.New("sign-in service not configured")
	}
	if err := signInService.SignOut(cmd.Context()); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	cmd.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if signInService == nil {
		return errors.New("sign-in service not configured")
	}
	session, err := signInService.CurrentSession()
	if errors.Is(err, domain.ErrNoSession) {
		cmd.Println("Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Printf("%s <%s>\n", session.DisplayName, session.Email)
	cmd.Printf("Role: %s\n", session.Role)
	cmd.Printf("Landing destination: %s\n", domain.RouteForRole(session.Role))
	return nil
}

// redirectPort extracts the listener port from the registered redirect URI.
func redirectPort(redirectURI string) (int, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return 0, err
	}
	if u.Port() == "" {
		return 0, fmt.Errorf("redirect uri %q has no port", redirectURI)
	}
	return strconv.Atoi(u.Port())
}
