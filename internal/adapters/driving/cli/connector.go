package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/catalyst-match/identity/internal/core/domain"
)

// linkPollInterval is how often the link command checks whether the consent
// window has resolved.
const linkPollInterval = 500 * time.Millisecond

var connectorCmd = &cobra.Command{
	Use:   "connector",
	Short: "Manage third-party connectors",
	Long: `Link, sync and disconnect third-party connectors.

OAuth connectors (like Gmail) link through a browser consent window; the
others are placeholders toggled by the backend.

Examples:
  catalyst connector list
  catalyst connector link gmail
  catalyst connector sync gmail
  catalyst connector disconnect gmail`,
}

var connectorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connectors and their link state",
	RunE:  runConnectorList,
}

var connectorStatusCmd = &cobra.Command{
	Use:   "status [connector-id]",
	Short: "Reconcile a connector's state against the backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorStatus,
}

var connectorLinkCmd = &cobra.Command{
	Use:   "link [connector-id]",
	Short: "Link a connector through the browser consent flow",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorLink,
}

var connectorSyncCmd = &cobra.Command{
	Use:   "sync [connector-id]",
	Short: "Import documents over a linked connector",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorSync,
}

var connectorDisconnectCmd = &cobra.Command{
	Use:   "disconnect [connector-id]",
	Short: "Remove a connector link",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectorDisconnect,
}

func init() {
	connectorCmd.AddCommand(connectorListCmd)
	connectorCmd.AddCommand(connectorStatusCmd)
	connectorCmd.AddCommand(connectorLinkCmd)
	connectorCmd.AddCommand(connectorSyncCmd)
	connectorCmd.AddCommand(connectorDisconnectCmd)
	rootCmd.AddCommand(connectorCmd)
}

func runConnectorList(cmd *cobra.Command, _ []string) error {
	if linkService == nil {
		return errors.New("connector service not configured")
	}

	// Mount-time reconciliation: refresh OAuth connectors before rendering.
	for _, connector := range linkService.Catalog() {
		if connector.OAuth {
			linkService.CheckStatus(cmd.Context(), connector.ID)
		}
	}

	for _, connector := range linkService.Catalog() {
		link, err := linkService.State(connector.ID)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%-12s %-22s %s", connector.ID,
			styleName.Render(connector.Name), renderState(link.State))
		if link.LastError != "" {
			line += "  " + styleError.Render(link.LastError)
		}
		if link.LastSyncCount > 0 {
			line += "  " + styleMuted.Render(fmt.Sprintf("%d documents synced", link.LastSyncCount))
		}
		cmd.Println(line)
	}
	return nil
}

func runConnectorStatus(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("connector service not configured")
	}
	state := linkService.CheckStatus(cmd.Context(), args[0])
	cmd.Printf("%s: %s\n", args[0], renderState(state))
	return nil
}

func runConnectorLink(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("connector service not configured")
	}
	connectorID := args[0]

	if err := linkService.BeginLink(cmd.Context(), connectorID); err != nil {
		cmd.PrintErrln(domain.Describe(err))
		return err
	}

	cmd.Println("Complete the authorization in your browser...")
	link, err := waitForLinkResolution(cmd.Context(), connectorID)
	if err != nil {
		return err
	}

	switch link.State {
	case domain.LinkConnected:
		cmd.Printf("%s connected! You can now sync.\n", connectorID)
		return nil
	case domain.LinkError:
		if link.LastError == domain.ReasonAbandoned {
			cmd.PrintErrln(domain.Describe(domain.ErrAbandoned))
			return domain.ErrAbandoned
		}
		return fmt.Errorf("connection failed: %s", link.LastError)
	default:
		return fmt.Errorf("linking did not resolve (state %s)", link.State)
	}
}

// waitForLinkResolution polls the state machine until it leaves connecting.
func waitForLinkResolution(ctx context.Context, connectorID string) (domain.ConnectorLink, error) {
	ticker := time.NewTicker(linkPollInterval)
	defer ticker.Stop()

	for {
		link, err := linkService.State(connectorID)
		if err != nil {
			return domain.ConnectorLink{}, err
		}
		if link.State != domain.LinkConnecting {
			return link, nil
		}
		select {
		case <-ctx.Done():
			return domain.ConnectorLink{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func runConnectorSync(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("connector service not configured")
	}
	connectorID := args[0]

	cmd.Printf("Syncing %s...\n", connectorID)
	count, err := linkService.Sync(cmd.Context(), connectorID)
	if err != nil {
		cmd.PrintErrln(domain.Describe(err))
		return err
	}
	cmd.Printf("Synced %d documents successfully!\n", count)
	return nil
}

func runConnectorDisconnect(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("connector service not configured")
	}
	if err := linkService.Disconnect(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("%s disconnected.\n", args[0])
	return nil
}
