package driven

import "context"

// ConsentSession is a live consent browsing context: the window that walks
// the user through the provider's consent screen. It runs concurrently with
// its opener; the only coordination is the outcome bus and the Done channel.
type ConsentSession interface {
	// Done is closed when the context ends, whether or not an outcome
	// message was ever sent. The opener uses it to detect abandonment.
	Done() <-chan struct{}

	// Close tears the context down early. Idempotent.
	Close() error
}

// ConsentLauncher opens a consent browsing context at the provider
// authorization URL. A launcher that cannot open one (the popup-blocked
// case) returns an error and no session.
//
// The opener must subscribe to the outcome bus BEFORE calling Open, or a
// fast consent context could publish into nothing.
type ConsentLauncher interface {
	Open(ctx context.Context, connectorID, authURL string) (ConsentSession, error)
}
