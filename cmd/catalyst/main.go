// Command catalyst is the Catalyst identity CLI: Google sign-in and
// third-party connector linking against the Catalyst backend.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/catalyst-match/identity/internal/adapters/driven/backend"
	"github.com/catalyst-match/identity/internal/adapters/driven/bus"
	configfile "github.com/catalyst-match/identity/internal/adapters/driven/config/file"
	"github.com/catalyst-match/identity/internal/adapters/driven/storage/sqlite"
	"github.com/catalyst-match/identity/internal/adapters/driving/cli"
	"github.com/catalyst-match/identity/internal/adapters/driving/consent"
	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/services"
	"github.com/catalyst-match/identity/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg := configStore.Config()

	stopWatch, err := configStore.Watch(func(fresh configfile.Config) {
		logger.Info("Configuration changed; new backend %s", fresh.Backend.BaseURL)
	})
	if err == nil {
		defer stopWatch()
	} else {
		logger.Warn("Config watch unavailable: %v", err)
	}

	sessionStore, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer sessionStore.Close()

	client := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(time.Duration(cfg.Backend.TimeoutSeconds)*time.Second))

	signIn := services.NewSignInService(client, sessionStore, domain.AuthRequest{
		Provider:    cfg.OAuth.Provider,
		ClientID:    cfg.OAuth.ClientID,
		RedirectURI: cfg.OAuth.RedirectURI,
		Scopes:      cfg.OAuth.Scopes,
		AccessType:  cfg.OAuth.AccessType,
	})

	outcomes := bus.New()
	launcher := consent.NewLauncher(outcomes, client.CompleteLink,
		consent.WithPortRange(cfg.Consent.PortStart, cfg.Consent.PortEnd),
		consent.WithTimeout(time.Duration(cfg.Consent.TimeoutSeconds)*time.Second))

	links := services.NewLinkController(client, launcher, outcomes, nil)
	defer links.Close() //nolint:errcheck // teardown is best effort

	cli.Configure(signIn, links, cfg.OAuth.RedirectURI)
	return cli.Execute()
}
