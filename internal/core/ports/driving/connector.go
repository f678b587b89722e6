package driving

import (
	"context"

	"github.com/catalyst-match/identity/internal/core/domain"
)

// ConnectorLinkService owns one link state machine per known connector.
// Machines are independent: two connectors may be connecting at the same
// time, but no two consent windows may be open for the same connector.
type ConnectorLinkService interface {
	// Catalog returns the known connectors.
	Catalog() []domain.Connector

	// CheckStatus reconciles the machine against the backend. It is
	// idempotent and advisory: a failed check logs and leaves the prior
	// state unchanged.
	CheckStatus(ctx context.Context, connectorID string) domain.LinkState

	// BeginLink starts a linking attempt: fetches the authorization URL and
	// opens the consent window. Valid from disconnected or error only.
	BeginLink(ctx context.Context, connectorID string) error

	// Sync imports documents over a live link. Valid from connected only.
	// A failed sync keeps the link and records the error.
	Sync(ctx context.Context, connectorID string) (int, error)

	// Disconnect drops the link locally no matter what the backend says.
	Disconnect(ctx context.Context, connectorID string) error

	// State returns the connector's current link entry.
	State(connectorID string) (domain.ConnectorLink, error)

	// Close unsubscribes from the outcome bus. After Close no outcome
	// message can mutate the machines.
	Close() error
}
