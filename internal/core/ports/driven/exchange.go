package driven

import (
	"context"

	"github.com/catalyst-match/identity/internal/core/domain"
)

// ExchangeClient trades a single-use authorization code for a session at the
// backend exchange endpoint.
//
// Implementations classify failures with the domain sentinels:
// domain.ErrExchangeUnreachable for network-level failures and
// domain.ErrExchangeRejected for structured backend rejections. The caller
// never retries either - authorization codes are single-use.
type ExchangeClient interface {
	Exchange(ctx context.Context, code string) (*domain.Session, error)
}
