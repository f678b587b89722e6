package driven

import (
	"context"

	"github.com/catalyst-match/identity/internal/core/domain"
)

// SessionStore persists the current session between process runs. There is
// exactly one session: Save replaces any previous one atomically, Clear
// removes it wholesale. Reads may happen from many places concurrently; the
// only writers are the sign-in exchange and explicit sign-out.
type SessionStore interface {
	// Load returns the persisted session.
	// Returns domain.ErrNoSession when none is stored.
	Load(ctx context.Context) (*domain.Session, error)

	// Save stores the session, replacing any previous one.
	Save(ctx context.Context, session domain.Session) error

	// Clear removes the persisted session.
	Clear(ctx context.Context) error
}
