package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ExchangeClient = (*Client)(nil)

// exchangeResponse is the session exchange payload from the backend.
type exchangeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	User    *struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		UserType string `json:"userType"`
		FullName string `json:"fullName"`
	} `json:"user,omitempty"`
}

// Exchange POSTs a single-use authorization code to the backend exchange
// endpoint and normalises the response into a session. Failures are
// classified: a transport failure is domain.ErrExchangeUnreachable, any
// non-success status or success-flagged-false body is
// domain.ErrExchangeRejected with the backend's detail attached.
func (c *Client) Exchange(ctx context.Context, code string) (*domain.Session, error) {
	var resp exchangeResponse
	err := c.doJSON(ctx, "POST", "/auth/google/callback", map[string]string{"code": code}, &resp)

	var transport *transportError
	switch {
	case errors.As(err, &transport):
		return nil, fmt.Errorf("%w: %v", domain.ErrExchangeUnreachable, transport.Unwrap())
	case err != nil && resp.Error != "":
		return nil, fmt.Errorf("%w: %s", domain.ErrExchangeRejected, resp.Error)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrExchangeRejected, err)
	case !resp.Success || resp.User == nil:
		detail := resp.Error
		if detail == "" {
			detail = "exchange declined"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrExchangeRejected, detail)
	}

	return &domain.Session{
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		Role:        domain.Role(resp.User.UserType),
		DisplayName: resp.User.FullName,
	}, nil
}
