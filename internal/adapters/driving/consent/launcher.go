package consent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
	"github.com/catalyst-match/identity/internal/logger"
)

// Completer finishes the linking flow once the provider redirect arrives,
// by handing the authorization code to the backend. It mirrors the callback
// exchange the web client's popup runs before messaging its opener. A nil
// Completer treats code receipt itself as success (the backend was the
// redirect target and already holds the link).
type Completer func(ctx context.Context, connectorID, code string) error

// Ensure Launcher implements the interface.
var _ driven.ConsentLauncher = (*Launcher)(nil)

// Launcher opens consent browsing contexts for connector linking. Each Open
// starts a local callback server, points the system browser at the
// authorization URL and reports the outcome on the bus exactly once. The
// opener is never touched directly.
type Launcher struct {
	bus       driven.OutcomeBus
	completer Completer
	portStart int
	portEnd   int
	timeout   time.Duration
	openURL   func(string) error
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithPortRange bounds the local callback listener ports.
func WithPortRange(start, end int) LauncherOption {
	return func(l *Launcher) {
		l.portStart = start
		l.portEnd = end
	}
}

// WithTimeout caps how long a consent window may stay open.
func WithTimeout(timeout time.Duration) LauncherOption {
	return func(l *Launcher) {
		l.timeout = timeout
	}
}

// WithBrowserOpener replaces the system browser opener. Used in tests.
func WithBrowserOpener(open func(string) error) LauncherOption {
	return func(l *Launcher) {
		l.openURL = open
	}
}

// NewLauncher creates a consent launcher publishing outcomes on bus.
func NewLauncher(bus driven.OutcomeBus, completer Completer, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		bus:       bus,
		completer: completer,
		portStart: 53690,
		portEnd:   53790,
		timeout:   5 * time.Minute,
		openURL:   OpenBrowser,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open starts the consent context. Failure to stand up the listener or the
// browser is reported synchronously - that is this environment's popup
// blocked case - and leaves nothing running.
func (l *Launcher) Open(_ context.Context, connectorID, authURL string) (driven.ConsentSession, error) {
	port, err := FindAvailablePort(l.portStart, l.portEnd)
	if err != nil {
		return nil, fmt.Errorf("no callback port: %w", err)
	}

	server := NewCallbackServer(port)
	if err := server.Start(); err != nil {
		return nil, fmt.Errorf("callback server: %w", err)
	}

	if err := l.openURL(authURL); err != nil {
		_ = server.Stop()
		return nil, fmt.Errorf("open browser: %w", err)
	}

	// The session outlives the caller's context: the window keeps running
	// after BeginLink returns, bounded only by the launcher timeout.
	runCtx, cancel := context.WithTimeout(context.Background(), l.timeout)
	s := &session{
		server: server,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(runCtx, l, connectorID)
	return s, nil
}

// session is one live consent browsing context.
type session struct {
	server *CallbackServer
	cancel context.CancelFunc
	done   chan struct{}
}

// run waits for the provider redirect, finishes the exchange and publishes
// the outcome. A context that ends first means the window was abandoned: no
// message is sent, only Done closes, and the opener's watchdog takes over.
func (s *session) run(ctx context.Context, l *Launcher, connectorID string) {
	defer close(s.done)
	defer s.server.Stop() //nolint:errcheck // shutdown is best effort
	defer s.cancel()

	query, err := s.server.WaitForCallback(ctx)
	if err != nil {
		logger.Warn("Consent window for %s ended without a callback: %v", connectorID, err)
		return
	}

	result, err := domain.ParseCallback(query)
	switch {
	case errors.Is(err, domain.ErrProviderDenied):
		l.publish(connectorID, false, result.ErrorReason)
		return
	case err != nil:
		l.publish(connectorID, false, "missing_code")
		return
	}

	if l.completer != nil {
		if err := l.completer(ctx, connectorID, result.Code); err != nil {
			l.publish(connectorID, false, err.Error())
			return
		}
	}
	l.publish(connectorID, true, "")
}

func (l *Launcher) publish(connectorID string, success bool, reason string) {
	l.bus.Publish(domain.LinkOutcome{
		Type:        domain.MessageTypeConnectorLinked,
		Success:     success,
		ConnectorID: connectorID,
		Error:       reason,
	})
}

// Done is closed when the consent context ends.
func (s *session) Done() <-chan struct{} {
	return s.done
}

// Close tears the consent context down early. Idempotent.
func (s *session) Close() error {
	s.cancel()
	return nil
}
