// Package cli implements the cobra command surface for the Catalyst
// identity core: sign-in, session inspection and connector linking.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/catalyst-match/identity/internal/core/ports/driving"
	"github.com/catalyst-match/identity/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main at startup. Commands check for nil so the
// package stays testable with mocks.
var (
	signInService    driving.SignInService
	linkService      driving.ConnectorLinkService
	loginRedirectURI string
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "catalyst",
	Short: "Catalyst identity and connector linking",
	Long: `Catalyst research-matching identity core.

Sign in with your Google account, inspect the current session and link
third-party connectors (Gmail and friends) to import documents.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging to stderr")
}

// Configure injects the services the commands drive. redirectURI is the
// registered sign-in redirect; the login command listens on its port.
func Configure(signIn driving.SignInService, link driving.ConnectorLinkService, redirectURI string) {
	signInService = signIn
	linkService = link
	loginRedirectURI = redirectURI
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
