package domain

// MessageTypeConnectorLinked is the discriminator carried by every link
// outcome message. The outcome bus is a shared channel; listeners must
// ignore any message without this type.
const MessageTypeConnectorLinked = "CONNECTOR_LINKED"

// LinkOutcome is the message a consent context sends its opener when the
// linking flow finishes. At most one outcome is meaningful per consent
// window; duplicates are tolerated because the listener is idempotent.
type LinkOutcome struct {
	// Type must be MessageTypeConnectorLinked.
	Type string `json:"type"`
	// Success reports whether the link was established.
	Success bool `json:"success"`
	// ConnectorID names the connector the outcome belongs to.
	ConnectorID string `json:"connectorId"`
	// Error carries the failure reason when Success is false.
	Error string `json:"error,omitempty"`
}

// Valid reports whether the message carries the expected discriminator and
// names a connector.
func (m LinkOutcome) Valid() bool {
	return m.Type == MessageTypeConnectorLinked && m.ConnectorID != ""
}
