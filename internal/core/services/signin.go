package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/oauth2"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
	"github.com/catalyst-match/identity/internal/core/ports/driving"
	"github.com/catalyst-match/identity/internal/logger"
)

// Ensure SignInService implements the interface.
var _ driving.SignInService = (*SignInService)(nil)

// SignInService owns the sign-in code exchange and the current session.
// The session is hydrated from the store at construction, overwritten by a
// successful exchange and cleared on sign-out; nothing else writes it.
type SignInService struct {
	exchange driven.ExchangeClient
	sessions driven.SessionStore
	request  domain.AuthRequest

	mu      sync.RWMutex
	current *domain.Session
}

// NewSignInService creates a sign-in service and hydrates the current
// session from the store. A missing session is not an error.
func NewSignInService(
	exchange driven.ExchangeClient,
	sessions driven.SessionStore,
	request domain.AuthRequest,
) *SignInService {
	s := &SignInService{
		exchange: exchange,
		sessions: sessions,
		request:  request,
	}
	if sessions != nil {
		session, err := sessions.Load(context.Background())
		switch {
		case err == nil:
			s.current = session
		case errors.Is(err, domain.ErrNoSession):
			// First run, nothing to hydrate.
		default:
			logger.Warn("Failed to hydrate session: %v", err)
		}
	}
	return s
}

// BeginSignIn constructs the provider authorization URL from the configured
// auth request. The state parameter guards the round trip against CSRF.
func (s *SignInService) BeginSignIn() (string, error) {
	if s.request.ClientID == "" {
		return "", fmt.Errorf("%w: missing client id", domain.ErrAuthURLUnavailable)
	}

	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	cfg := oauth2.Config{
		ClientID:    s.request.ClientID,
		RedirectURL: s.request.RedirectURI,
		Scopes:      s.request.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL: fmt.Sprintf("https://accounts.%s/o/oauth2/v2/auth", s.request.Provider),
		},
	}

	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "consent")}
	if s.request.AccessType == "offline" {
		opts = append(opts, oauth2.AccessTypeOffline)
	}

	return cfg.AuthCodeURL(state, opts...), nil
}

// CompleteSignIn consumes the callback query delivered back from the
// provider. The error parameter is honoured before anything touches the
// network; a denial must never cost an exchange call.
func (s *SignInService) CompleteSignIn(ctx context.Context, query url.Values) (*domain.Session, error) {
	result, err := domain.ParseCallback(query)
	if err != nil {
		logger.Debug("Callback rejected before exchange: %v", err)
		return nil, err
	}

	session, err := s.exchange.Exchange(ctx, result.Code)
	if err != nil {
		return nil, err
	}

	// Overwrite semantics: a second login replaces the first.
	if err := s.sessions.Save(ctx, *session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	logger.Info("Signed in as %s (%s)", session.Email, session.Role)
	return session, nil
}

// CurrentSession returns a copy of the hydrated session.
func (s *SignInService) CurrentSession() (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, domain.ErrNoSession
	}
	session := *s.current
	return &session, nil
}

// SignOut destroys the session locally and in the store.
func (s *SignInService) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
