// Package driving defines the interfaces through which the outside world
// drives the identity core. CLI commands and any future UI surface consume
// these; the services package implements them.
package driving

import (
	"context"
	"net/url"

	"github.com/catalyst-match/identity/internal/core/domain"
)

// SignInService owns the sign-in exchange and the current session.
type SignInService interface {
	// BeginSignIn constructs the provider authorization URL for a fresh
	// sign-in attempt. Navigation is the caller's side effect.
	BeginSignIn() (string, error)

	// CompleteSignIn consumes the callback query delivered back from the
	// provider: it parses the code, exchanges it at the backend and persists
	// the resulting session, replacing any previous one. Failures are
	// classified with the domain sentinels and never retried.
	CompleteSignIn(ctx context.Context, query url.Values) (*domain.Session, error)

	// CurrentSession returns the hydrated session, or domain.ErrNoSession.
	CurrentSession() (*domain.Session, error)

	// SignOut destroys the session locally and in the store.
	SignOut(ctx context.Context) error
}
