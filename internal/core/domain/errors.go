package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrProviderDenied indicates the user or the provider rejected consent.
	// The authorization attempt is over; a fresh attempt is the only recovery.
	ErrProviderDenied = errors.New("provider denied authorization")

	// ErrMissingCode indicates a callback arrived without a code or an error
	// parameter. The callback is malformed and cannot be exchanged.
	ErrMissingCode = errors.New("no authorization code received")

	// ErrExchangeUnreachable indicates a network-level failure talking to the
	// backend exchange endpoint.
	ErrExchangeUnreachable = errors.New("exchange endpoint unreachable")

	// ErrExchangeRejected indicates the backend returned a structured failure
	// for the code exchange. Codes are single-use, so the core never retries.
	ErrExchangeRejected = errors.New("exchange rejected")

	// ErrNoSession indicates no session is currently persisted.
	ErrNoSession = errors.New("no session")

	// Connector linking errors.

	// ErrPopupBlocked indicates the consent browsing context failed to open.
	ErrPopupBlocked = errors.New("consent window blocked")

	// ErrAuthURLUnavailable indicates the backend could not supply an
	// authorization URL for the connector.
	ErrAuthURLUnavailable = errors.New("authorization URL unavailable")

	// ErrLinkInProgress indicates a linking attempt is already running for
	// this connector. No two consent windows may be open for one connector.
	ErrLinkInProgress = errors.New("linking already in progress")

	// ErrAlreadyLinked indicates the connector is already connected.
	ErrAlreadyLinked = errors.New("connector already linked")

	// ErrNotConnected indicates an operation that requires a live link was
	// called while the connector is not connected.
	ErrNotConnected = errors.New("connector not connected")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSyncFailed indicates the backend reported a sync failure. The link
	// itself survives; only the sync result is bad.
	ErrSyncFailed = errors.New("sync failed")

	// ErrDisconnectFailed indicates the backend revoke call failed. The local
	// link is dropped regardless.
	ErrDisconnectFailed = errors.New("disconnect failed")

	// ErrAbandoned indicates the consent window went away without ever
	// reporting an outcome.
	ErrAbandoned = errors.New("consent window abandoned")

	// ErrUnknownConnector indicates a connector id outside the catalog.
	ErrUnknownConnector = errors.New("unknown connector")
)

// Describe maps a classified failure to the short human-readable wording the
// presentation layer shows. Classification stays in the error values; this is
// the single place wording lives.
func Describe(err error) string {
	switch {
	case errors.Is(err, ErrProviderDenied):
		return "Sign-in was cancelled or denied."
	case errors.Is(err, ErrMissingCode):
		return "No authorization code received."
	case errors.Is(err, ErrExchangeUnreachable):
		return "Could not reach the server. Check your connection and try again."
	case errors.Is(err, ErrExchangeRejected):
		return "Sign-in failed. Please try again."
	case errors.Is(err, ErrPopupBlocked):
		return "Popup blocked! Please allow popups for this site."
	case errors.Is(err, ErrAuthURLUnavailable):
		return "Could not start the connection. Please try again."
	case errors.Is(err, ErrSyncFailed):
		return "Sync failed."
	case errors.Is(err, ErrDisconnectFailed):
		return "Disconnect did not complete on the server."
	case errors.Is(err, ErrAbandoned):
		return "The authorization window was closed before finishing."
	case errors.Is(err, ErrLinkInProgress):
		return "A connection attempt is already in progress."
	case errors.Is(err, ErrAlreadyLinked):
		return "Already connected."
	case errors.Is(err, ErrNotConnected):
		return "Not connected."
	case err == nil:
		return ""
	default:
		return "Something went wrong. Please try again."
	}
}
