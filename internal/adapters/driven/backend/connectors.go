package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ConnectorAPI = (*Client)(nil)

// Status reports whether the backend holds a live link for the connector.
func (c *Client) Status(ctx context.Context, connectorID string) (bool, error) {
	var resp struct {
		Connected bool `json:"connected"`
	}
	if err := c.doJSON(ctx, "GET", "/connectors/"+connectorID+"/status", nil, &resp); err != nil {
		return false, fmt.Errorf("connector status: %w", err)
	}
	return resp.Connected, nil
}

// AuthURL fetches the provider authorization URL for the connector.
func (c *Client) AuthURL(ctx context.Context, connectorID string) (string, error) {
	var resp struct {
		Success bool   `json:"success"`
		AuthURL string `json:"auth_url,omitempty"`
		Error   string `json:"error,omitempty"`
	}
	if err := c.doJSON(ctx, "GET", "/connectors/"+connectorID+"/auth", nil, &resp); err != nil {
		return "", fmt.Errorf("connector auth url: %w", err)
	}
	if !resp.Success || resp.AuthURL == "" {
		if resp.Error != "" {
			return "", errors.New(resp.Error)
		}
		return "", errors.New("no auth url in response")
	}
	return resp.AuthURL, nil
}

// Disconnect revokes the link server-side.
func (c *Client) Disconnect(ctx context.Context, connectorID string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.doJSON(ctx, "POST", "/connectors/"+connectorID+"/disconnect", nil, &resp); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDisconnectFailed, err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: backend declined", domain.ErrDisconnectFailed)
	}
	return nil
}

// Sync triggers a sync and returns the number of documents imported.
func (c *Client) Sync(ctx context.Context, connectorID string) (int, error) {
	var resp struct {
		Success         bool   `json:"success"`
		DocumentsSynced int    `json:"documents_synced,omitempty"`
		Error           string `json:"error,omitempty"`
	}
	if err := c.doJSON(ctx, "POST", "/connectors/"+connectorID+"/sync", nil, &resp); err != nil {
		return 0, fmt.Errorf("connector sync: %w", err)
	}
	if !resp.Success {
		if resp.Error != "" {
			return 0, errors.New(resp.Error)
		}
		return 0, errors.New("backend declined sync")
	}
	return resp.DocumentsSynced, nil
}

// CompleteLink finishes a connector linking flow by handing the backend the
// authorization code the consent window received. This mirrors the callback
// exchange the web client's popup performs before messaging its opener.
func (c *Client) CompleteLink(ctx context.Context, connectorID, code string) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error,omitempty"`
	}
	err := c.doJSON(ctx, "POST", "/connectors/"+connectorID+"/callback",
		map[string]string{"code": code}, &resp)
	if err != nil {
		return fmt.Errorf("connector callback: %w", err)
	}
	if !resp.Success {
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		return errors.New("backend declined link")
	}
	return nil
}
