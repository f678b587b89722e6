package domain

// LinkState is the lifecycle state of a connector link.
type LinkState string

const (
	// LinkDisconnected means no live link exists. The machine can always be
	// re-entered from here.
	LinkDisconnected LinkState = "disconnected"
	// LinkConnecting means a consent window is open and an outcome is awaited.
	LinkConnecting LinkState = "connecting"
	// LinkConnected means the backend holds a live link.
	LinkConnected LinkState = "connected"
	// LinkSyncing means a sync is running. Always reverts to connected.
	LinkSyncing LinkState = "syncing"
	// LinkError means the last attempt failed and needs an explicit retry.
	LinkError LinkState = "error"
)

// ConnectorLink tracks one connector's link state machine. Entries exist one
// per known connector and are mutated only by the link controller.
type ConnectorLink struct {
	// ConnectorID identifies the connector (e.g. "gmail").
	ConnectorID string `json:"connectorId"`
	// State is the current machine state.
	State LinkState `json:"status"`
	// LastError holds the reason for the most recent failure, if any.
	LastError string `json:"lastError,omitempty"`
	// LastSyncCount is the document count reported by the last good sync.
	LastSyncCount int `json:"lastSyncCount,omitempty"`
}

// linkEdges lists the legal state transitions. Status reconciliation is not
// listed here: a backend status check is authoritative and may land the
// machine on connected or disconnected from any state.
var linkEdges = map[LinkState][]LinkState{
	LinkDisconnected: {LinkConnecting},
	LinkConnecting:   {LinkConnected, LinkError},
	LinkConnected:    {LinkSyncing, LinkDisconnected},
	LinkSyncing:      {LinkConnected},
	LinkError:        {LinkConnecting, LinkDisconnected},
}

// Machine-readable reasons recorded on ConnectorLink.LastError when a
// linking attempt fails before or without an outcome message.
const (
	ReasonAuthURLUnavailable = "authUrlUnavailable"
	ReasonPopupBlocked       = "popupBlocked"
	ReasonAbandoned          = "abandoned"
)

// CanTransition reports whether the state machine allows moving from one
// state directly to another.
func CanTransition(from, to LinkState) bool {
	for _, next := range linkEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}
