package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
	"github.com/catalyst-match/identity/internal/core/ports/driving"
	"github.com/catalyst-match/identity/internal/logger"
)

// Ensure LinkController implements the interface.
var _ driving.ConnectorLinkService = (*LinkController)(nil)

// LinkController owns one link state machine per known connector. All
// transitions go through the controller; the consent context never mutates
// controller state, it only publishes outcome messages on the bus.
//
// Machines are independent: the mutex serialises transitions, but two
// connectors may be connecting at the same time.
type LinkController struct {
	api      driven.ConnectorAPI
	launcher driven.ConsentLauncher
	bus      driven.OutcomeBus

	mu       sync.Mutex
	links    map[string]*domain.ConnectorLink
	attempts map[string]string // connector id -> live linking attempt id
	catalog  []domain.Connector

	unsubscribe func()
	closeOnce   sync.Once
}

// NewLinkController creates a controller with one disconnected machine per
// catalog entry. It subscribes to the outcome bus immediately - before any
// consent window can be opened - so a fast consent context cannot publish
// into nothing. A nil catalog uses domain.DefaultCatalog.
func NewLinkController(
	api driven.ConnectorAPI,
	launcher driven.ConsentLauncher,
	bus driven.OutcomeBus,
	catalog []domain.Connector,
) *LinkController {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}

	c := &LinkController{
		api:      api,
		launcher: launcher,
		bus:      bus,
		links:    make(map[string]*domain.ConnectorLink, len(catalog)),
		attempts: make(map[string]string),
		catalog:  catalog,
	}
	for _, connector := range catalog {
		c.links[connector.ID] = &domain.ConnectorLink{
			ConnectorID: connector.ID,
			State:       domain.LinkDisconnected,
		}
	}
	if bus != nil {
		c.unsubscribe = bus.Subscribe(c.handleOutcome)
	}
	return c
}

// Catalog returns the known connectors.
func (c *LinkController) Catalog() []domain.Connector {
	result := make([]domain.Connector, len(c.catalog))
	copy(result, c.catalog)
	return result
}

// CheckStatus reconciles the machine against the backend. The backend answer
// is authoritative: it lands the machine on connected or disconnected from
// any state, which is also how a stuck connecting state gets resolved. A
// failed check is advisory only - it logs and leaves the prior state alone.
func (c *LinkController) CheckStatus(ctx context.Context, connectorID string) domain.LinkState {
	connected, err := c.api.Status(ctx, connectorID)
	if err != nil {
		logger.Warn("Status check for %s failed: %v", connectorID, err)
		return c.currentState(connectorID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.links[connectorID]
	if !ok {
		return domain.LinkDisconnected
	}
	delete(c.attempts, connectorID)
	if connected {
		link.State = domain.LinkConnected
	} else {
		link.State = domain.LinkDisconnected
	}
	return link.State
}

// BeginLink starts a linking attempt: it fetches the authorization URL from
// the backend and opens the consent window. Valid from disconnected or error
// only; a second attempt while one is live is rejected so no two consent
// windows exist for the same connector.
func (c *LinkController) BeginLink(ctx context.Context, connectorID string) error {
	c.mu.Lock()
	link, ok := c.links[connectorID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownConnector, connectorID)
	}
	switch link.State {
	case domain.LinkConnecting, domain.LinkSyncing:
		c.mu.Unlock()
		return domain.ErrLinkInProgress
	case domain.LinkConnected:
		c.mu.Unlock()
		return domain.ErrAlreadyLinked
	case domain.LinkDisconnected, domain.LinkError:
	}
	link.State = domain.LinkConnecting
	link.LastError = ""
	attemptID := uuid.NewString()
	c.attempts[connectorID] = attemptID
	c.mu.Unlock()

	authURL, err := c.api.AuthURL(ctx, connectorID)
	if err != nil {
		c.failAttempt(connectorID, attemptID, domain.ReasonAuthURLUnavailable)
		return fmt.Errorf("%w: %v", domain.ErrAuthURLUnavailable, err)
	}

	session, err := c.launcher.Open(ctx, connectorID, authURL)
	if err != nil {
		c.failAttempt(connectorID, attemptID, domain.ReasonPopupBlocked)
		return fmt.Errorf("%w: %v", domain.ErrPopupBlocked, err)
	}

	logger.Info("Consent window opened for %s", connectorID)
	go c.watchAbandonment(connectorID, attemptID, session)
	return nil
}

// watchAbandonment resolves the lost-popup case: a consent window that goes
// away without ever sending an outcome. When the session ends and this
// attempt is still the live one, the machine moves to error rather than
// hanging in connecting forever.
func (c *LinkController) watchAbandonment(connectorID, attemptID string, session driven.ConsentSession) {
	<-session.Done()

	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.links[connectorID]
	if !ok || c.attempts[connectorID] != attemptID || link.State != domain.LinkConnecting {
		return
	}
	delete(c.attempts, connectorID)
	link.State = domain.LinkError
	link.LastError = domain.ReasonAbandoned
	logger.Warn("Consent window for %s closed without an outcome", connectorID)
}

// handleOutcome is the bus subscriber: the only legal way out of connecting
// besides a blocked window or abandonment. The bus is shared, so anything
// without the expected type discriminator is ignored. The handler is
// idempotent - once the machine has left connecting, further messages for
// the same window are no-ops.
func (c *LinkController) handleOutcome(msg domain.LinkOutcome) {
	if !msg.Valid() {
		logger.Debug("Ignoring message with type %q on outcome bus", msg.Type)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.links[msg.ConnectorID]
	if !ok || link.State != domain.LinkConnecting {
		return
	}
	delete(c.attempts, msg.ConnectorID)
	if msg.Success {
		link.State = domain.LinkConnected
		link.LastError = ""
		logger.Info("Connector %s linked", msg.ConnectorID)
		return
	}
	link.State = domain.LinkError
	link.LastError = msg.Error
	if link.LastError == "" {
		link.LastError = "link failed"
	}
	logger.Warn("Connector %s failed to link: %s", msg.ConnectorID, link.LastError)
}

// Sync imports documents over a live link. A failed sync keeps the link -
// a stale but still-linked connector beats forcing re-authorization - and
// records the failure on the entry.
func (c *LinkController) Sync(ctx context.Context, connectorID string) (int, error) {
	c.mu.Lock()
	link, ok := c.links[connectorID]
	if !ok {
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownConnector, connectorID)
	}
	switch link.State {
	case domain.LinkSyncing:
		c.mu.Unlock()
		return 0, domain.ErrSyncInProgress
	case domain.LinkConnected:
	default:
		c.mu.Unlock()
		return 0, domain.ErrNotConnected
	}
	link.State = domain.LinkSyncing
	c.mu.Unlock()

	count, err := c.api.Sync(ctx, connectorID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if link.State == domain.LinkSyncing {
		link.State = domain.LinkConnected
	}
	if err != nil {
		link.LastError = err.Error()
		return 0, fmt.Errorf("%w: %v", domain.ErrSyncFailed, err)
	}
	link.LastError = ""
	link.LastSyncCount = count
	logger.Info("Synced %d documents for %s", count, connectorID)
	return count, nil
}

// Disconnect drops the link. Disconnection is local-first: the machine moves
// to disconnected no matter what the revoke call says, because a connector
// the user asked to remove must never still show as connected.
func (c *LinkController) Disconnect(ctx context.Context, connectorID string) error {
	c.mu.Lock()
	link, ok := c.links[connectorID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownConnector, connectorID)
	}
	switch link.State {
	case domain.LinkConnecting:
		c.mu.Unlock()
		return domain.ErrLinkInProgress
	case domain.LinkSyncing:
		c.mu.Unlock()
		return domain.ErrSyncInProgress
	case domain.LinkDisconnected:
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.api.Disconnect(ctx, connectorID); err != nil {
		logger.Warn("Backend disconnect for %s failed: %v", connectorID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attempts, connectorID)
	link.State = domain.LinkDisconnected
	link.LastError = ""
	return nil
}

// State returns a copy of the connector's current link entry.
func (c *LinkController) State(connectorID string) (domain.ConnectorLink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.links[connectorID]
	if !ok {
		return domain.ConnectorLink{}, fmt.Errorf("%w: %s", domain.ErrUnknownConnector, connectorID)
	}
	return *link, nil
}

// Close removes the bus subscription. After Close no outcome message can
// mutate the machines; a later, unrelated consent window cannot reach a
// stale controller.
func (c *LinkController) Close() error {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
	})
	return nil
}

// failAttempt moves a live attempt to error with the given reason. A stale
// attempt id means something else already resolved the machine; leave it.
func (c *LinkController) failAttempt(connectorID, attemptID, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.links[connectorID]
	if !ok || c.attempts[connectorID] != attemptID {
		return
	}
	delete(c.attempts, connectorID)
	link.State = domain.LinkError
	link.LastError = reason
}

func (c *LinkController) currentState(connectorID string) domain.LinkState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if link, ok := c.links[connectorID]; ok {
		return link.State
	}
	return domain.LinkDisconnected
}
