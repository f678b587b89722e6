package driven

import "context"

// ConnectorAPI is the backend surface for connector status and control.
// It is a thin request/response wrapper; all state lives in the link
// controller, which treats these calls as suspension points.
type ConnectorAPI interface {
	// Status reports whether the backend holds a live link for the connector.
	Status(ctx context.Context, connectorID string) (bool, error)

	// AuthURL fetches the provider authorization URL for the connector.
	AuthURL(ctx context.Context, connectorID string) (string, error)

	// Disconnect revokes the link server-side.
	Disconnect(ctx context.Context, connectorID string) error

	// Sync triggers a sync and returns the number of documents imported.
	Sync(ctx context.Context, connectorID string) (int, error)
}
