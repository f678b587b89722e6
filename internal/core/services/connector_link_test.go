package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
)

// fakeConnectorAPI implements driven.ConnectorAPI with scripted answers.
type fakeConnectorAPI struct {
	mu sync.Mutex

	connected     bool
	statusErr     error
	authURL       string
	authErr       error
	syncCount     int
	syncErr       error
	syncStarted   chan struct{}
	syncRelease   chan struct{}
	disconnectErr error

	authCalls       int
	disconnectCalls int
}

func (f *fakeConnectorAPI) Status(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected, f.statusErr
}

func (f *fakeConnectorAPI) AuthURL(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.authURL, f.authErr
}

func (f *fakeConnectorAPI) Sync(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	started, release := f.syncStarted, f.syncRelease
	count, err := f.syncCount, f.syncErr
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return count, err
}

func (f *fakeConnectorAPI) Disconnect(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnectCalls++
	return f.disconnectErr
}

// fakeConsentSession satisfies driven.ConsentSession for the watchdog tests.
type fakeConsentSession struct {
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeConsentSession() *fakeConsentSession {
	return &fakeConsentSession{done: make(chan struct{})}
}

func (f *fakeConsentSession) Done() <-chan struct{} { return f.done }

func (f *fakeConsentSession) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

type fakeLauncher struct {
	mu    sync.Mutex
	err   error
	opens int
	last  *fakeConsentSession
}

func (f *fakeLauncher) Open(_ context.Context, _, _ string) (driven.ConsentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.opens++
	f.last = newFakeConsentSession()
	return f.last, nil
}

func (f *fakeLauncher) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// fakeBus is a synchronous in-test stand-in for the outcome bus.
type fakeBus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(domain.LinkOutcome)
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[int]func(domain.LinkOutcome))}
}

func (b *fakeBus) Publish(msg domain.LinkOutcome) {
	b.mu.Lock()
	handlers := make([]func(domain.LinkOutcome), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
}

func (b *fakeBus) Subscribe(handler func(domain.LinkOutcome)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

func (b *fakeBus) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

func newTestController(api *fakeConnectorAPI, launcher *fakeLauncher, bus *fakeBus) *LinkController {
	return NewLinkController(api, launcher, bus, nil)
}

func linkedOutcome(connectorID string, success bool, reason string) domain.LinkOutcome {
	return domain.LinkOutcome{
		Type:        domain.MessageTypeConnectorLinked,
		Success:     success,
		ConnectorID: connectorID,
		Error:       reason,
	}
}

func TestBeginLink_OpensConsentWindow(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	launcher := &fakeLauncher{}
	c := newTestController(api, launcher, newFakeBus())
	defer c.Close()

	err := c.BeginLink(context.Background(), "gmail")

	require.NoError(t, err)
	assert.Equal(t, 1, launcher.openCount())
	link, err := c.State("gmail")
	require.NoError(t, err)
	assert.Equal(t, domain.LinkConnecting, link.State)
}

func TestBeginLink_RejectedWhileConnecting(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	launcher := &fakeLauncher{}
	c := newTestController(api, launcher, newFakeBus())
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	err := c.BeginLink(context.Background(), "gmail")

	require.ErrorIs(t, err, domain.ErrLinkInProgress)
	assert.Equal(t, 1, launcher.openCount(), "no second consent window")
}

func TestBeginLink_RejectedWhenConnected(t *testing.T) {
	api := &fakeConnectorAPI{connected: true, authURL: "https://accounts.google.com/consent"}
	launcher := &fakeLauncher{}
	c := newTestController(api, launcher, newFakeBus())
	defer c.Close()

	c.CheckStatus(context.Background(), "gmail")
	err := c.BeginLink(context.Background(), "gmail")

	require.ErrorIs(t, err, domain.ErrAlreadyLinked)
	assert.Zero(t, launcher.openCount())
}

func TestBeginLink_UnknownConnector(t *testing.T) {
	c := newTestController(&fakeConnectorAPI{}, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	err := c.BeginLink(context.Background(), "fax-machine")

	require.ErrorIs(t, err, domain.ErrUnknownConnector)
}

func TestBeginLink_AuthURLUnavailable(t *testing.T) {
	api := &fakeConnectorAPI{authErr: errors.New("backend down")}
	launcher := &fakeLauncher{}
	c := newTestController(api, launcher, newFakeBus())
	defer c.Close()

	err := c.BeginLink(context.Background(), "gmail")

	require.ErrorIs(t, err, domain.ErrAuthURLUnavailable)
	assert.Zero(t, launcher.openCount(), "no window without an authorization URL")
	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkError, link.State)
	assert.Equal(t, domain.ReasonAuthURLUnavailable, link.LastError)
}

func TestBeginLink_WindowBlocked(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	launcher := &fakeLauncher{err: errors.New("blocked")}
	c := newTestController(api, launcher, newFakeBus())
	defer c.Close()

	err := c.BeginLink(context.Background(), "gmail")

	require.ErrorIs(t, err, domain.ErrPopupBlocked)
	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkError, link.State)
	assert.Equal(t, domain.ReasonPopupBlocked, link.LastError)
}

func TestBeginLink_RetryFromError(t *testing.T) {
	api := &fakeConnectorAPI{authErr: errors.New("backend down")}
	launcher := &fakeLauncher{}
	c := newTestController(api, launcher, newFakeBus())
	defer c.Close()

	require.Error(t, c.BeginLink(context.Background(), "gmail"))

	api.mu.Lock()
	api.authErr = nil
	api.authURL = "https://accounts.google.com/consent"
	api.mu.Unlock()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnecting, link.State)
	assert.Empty(t, link.LastError, "retry clears the prior failure")
}

func TestOutcome_SuccessConnects(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	bus := newFakeBus()
	c := newTestController(api, &fakeLauncher{}, bus)
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	bus.Publish(linkedOutcome("gmail", true, ""))

	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnected, link.State)
	assert.Empty(t, link.LastError)
}

func TestOutcome_FailureRecordsReason(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	bus := newFakeBus()
	c := newTestController(api, &fakeLauncher{}, bus)
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	bus.Publish(linkedOutcome("gmail", false, "access_denied"))

	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkError, link.State)
	assert.Equal(t, "access_denied", link.LastError)
}

func TestOutcome_DuplicateIsNoOp(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	bus := newFakeBus()
	c := newTestController(api, &fakeLauncher{}, bus)
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	bus.Publish(linkedOutcome("gmail", true, ""))
	bus.Publish(linkedOutcome("gmail", false, "late duplicate"))

	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnected, link.State, "first resolution wins")
	assert.Empty(t, link.LastError)
}

func TestOutcome_WrongTypeIgnored(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	bus := newFakeBus()
	c := newTestController(api, &fakeLauncher{}, bus)
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	bus.Publish(domain.LinkOutcome{Type: "SOMETHING_ELSE", Success: true, ConnectorID: "gmail"})

	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnecting, link.State)
}

func TestOutcome_IgnoredOutsideConnecting(t *testing.T) {
	bus := newFakeBus()
	c := newTestController(&fakeConnectorAPI{}, &fakeLauncher{}, bus)
	defer c.Close()

	bus.Publish(linkedOutcome("gmail", true, ""))

	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkDisconnected, link.State, "no live attempt, nothing to resolve")
}

func TestWatchdog_AbandonedWindow(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	launcher := &fakeLauncher{}
	c := newTestController(api, launcher, newFakeBus())
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	require.NoError(t, launcher.last.Close())

	require.Eventually(t, func() bool {
		link, _ := c.State("gmail")
		return link.State == domain.LinkError
	}, 2*time.Second, 10*time.Millisecond)
	link, _ := c.State("gmail")
	assert.Equal(t, domain.ReasonAbandoned, link.LastError)
}

func TestWatchdog_StaleAfterOutcome(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	launcher := &fakeLauncher{}
	bus := newFakeBus()
	c := newTestController(api, launcher, bus)
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	bus.Publish(linkedOutcome("gmail", true, ""))
	require.NoError(t, launcher.last.Close())

	// The session ending after a resolved outcome must not regress the link.
	time.Sleep(50 * time.Millisecond)
	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnected, link.State)
}

func TestCheckStatus_Authoritative(t *testing.T) {
	api := &fakeConnectorAPI{connected: true}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	state := c.CheckStatus(context.Background(), "gmail")
	assert.Equal(t, domain.LinkConnected, state)

	api.mu.Lock()
	api.connected = false
	api.mu.Unlock()

	state = c.CheckStatus(context.Background(), "gmail")
	assert.Equal(t, domain.LinkDisconnected, state)
}

func TestCheckStatus_ResolvesStuckConnecting(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))

	api.mu.Lock()
	api.connected = true
	api.mu.Unlock()

	state := c.CheckStatus(context.Background(), "gmail")
	assert.Equal(t, domain.LinkConnected, state)
}

func TestCheckStatus_FailureKeepsPriorState(t *testing.T) {
	api := &fakeConnectorAPI{connected: true}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	c.CheckStatus(context.Background(), "gmail")

	api.mu.Lock()
	api.statusErr = errors.New("backend down")
	api.mu.Unlock()

	state := c.CheckStatus(context.Background(), "gmail")
	assert.Equal(t, domain.LinkConnected, state, "a failed check is advisory only")
}

func TestSync_Success(t *testing.T) {
	api := &fakeConnectorAPI{connected: true, syncCount: 42}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	c.CheckStatus(context.Background(), "gmail")
	count, err := c.Sync(context.Background(), "gmail")

	require.NoError(t, err)
	assert.Equal(t, 42, count)
	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnected, link.State)
	assert.Equal(t, 42, link.LastSyncCount)
}

func TestSync_FailureKeepsLink(t *testing.T) {
	api := &fakeConnectorAPI{connected: true, syncErr: errors.New("mailbox unavailable")}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	c.CheckStatus(context.Background(), "gmail")
	_, err := c.Sync(context.Background(), "gmail")

	require.ErrorIs(t, err, domain.ErrSyncFailed)
	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnected, link.State, "a failed sync does not drop the link")
	assert.Contains(t, link.LastError, "mailbox unavailable")
}

func TestSync_RequiresConnection(t *testing.T) {
	c := newTestController(&fakeConnectorAPI{}, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	_, err := c.Sync(context.Background(), "gmail")

	require.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestSync_RejectedWhileSyncing(t *testing.T) {
	api := &fakeConnectorAPI{
		connected:   true,
		syncStarted: make(chan struct{}),
		syncRelease: make(chan struct{}),
	}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	c.CheckStatus(context.Background(), "gmail")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Sync(context.Background(), "gmail")
	}()
	<-api.syncStarted

	_, err := c.Sync(context.Background(), "gmail")
	require.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(api.syncRelease)
	<-done
}

func TestDisconnect_AlwaysLandsDisconnected(t *testing.T) {
	tests := []struct {
		name       string
		backendErr error
	}{
		{name: "backend revoke succeeds", backendErr: nil},
		{name: "backend revoke fails", backendErr: errors.New("revoke failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeConnectorAPI{connected: true, disconnectErr: tt.backendErr}
			c := newTestController(api, &fakeLauncher{}, newFakeBus())
			defer c.Close()

			c.CheckStatus(context.Background(), "gmail")
			err := c.Disconnect(context.Background(), "gmail")

			require.NoError(t, err)
			link, _ := c.State("gmail")
			assert.Equal(t, domain.LinkDisconnected, link.State)
			assert.Equal(t, 1, api.disconnectCalls)
		})
	}
}

func TestDisconnect_NoOpWhenDisconnected(t *testing.T) {
	api := &fakeConnectorAPI{}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	require.NoError(t, c.Disconnect(context.Background(), "gmail"))
	assert.Zero(t, api.disconnectCalls, "nothing to revoke")
}

func TestDisconnect_RejectedWhileConnecting(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	c := newTestController(api, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	err := c.Disconnect(context.Background(), "gmail")

	require.ErrorIs(t, err, domain.ErrLinkInProgress)
}

func TestIndependentMachines(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	bus := newFakeBus()
	c := newTestController(api, &fakeLauncher{}, bus)
	defer c.Close()

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	bus.Publish(linkedOutcome("gmail", true, ""))

	slack, _ := c.State("slack")
	assert.Equal(t, domain.LinkDisconnected, slack.State, "other machines untouched")
	gmail, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnected, gmail.State)
}

func TestCatalog(t *testing.T) {
	c := newTestController(&fakeConnectorAPI{}, &fakeLauncher{}, newFakeBus())
	defer c.Close()

	catalog := c.Catalog()
	assert.Len(t, catalog, len(domain.DefaultCatalog()))
}

func TestClose_Unsubscribes(t *testing.T) {
	api := &fakeConnectorAPI{authURL: "https://accounts.google.com/consent"}
	bus := newFakeBus()
	c := newTestController(api, &fakeLauncher{}, bus)

	require.NoError(t, c.BeginLink(context.Background(), "gmail"))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close is idempotent")

	assert.Zero(t, bus.subscriberCount())
	bus.Publish(linkedOutcome("gmail", true, ""))
	link, _ := c.State("gmail")
	assert.Equal(t, domain.LinkConnecting, link.State, "a closed controller ignores the bus")
}
