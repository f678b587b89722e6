package consent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) *CallbackServer {
	t.Helper()
	server := NewCallbackServer(0)
	require.NoError(t, server.Start())
	t.Cleanup(func() { server.Stop() })
	return server
}

func get(t *testing.T, rawURL string) string {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCallbackServer_DeliversQuery(t *testing.T) {
	server := startTestServer(t)

	body := get(t, fmt.Sprintf("http://127.0.0.1:%d/callback?code=abc123&state=xyz", server.Port()))
	assert.Contains(t, body, "Authorization successful")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	query, err := server.WaitForCallback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", query.Get("code"))
	assert.Equal(t, "xyz", query.Get("state"))
}

func TestCallbackServer_RendersProviderError(t *testing.T) {
	server := startTestServer(t)

	body := get(t, fmt.Sprintf("http://127.0.0.1:%d/callback?error=access_denied", server.Port()))
	assert.Contains(t, body, "Authorization failed")
	assert.Contains(t, body, "access_denied")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	query, err := server.WaitForCallback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access_denied", query.Get("error"))
}

func TestCallbackServer_FirstRedirectWins(t *testing.T) {
	server := startTestServer(t)
	base := fmt.Sprintf("http://127.0.0.1:%d/callback", server.Port())

	get(t, base+"?code=first")
	get(t, base+"?code=second")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	query, err := server.WaitForCallback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", query.Get("code"))
}

func TestCallbackServer_WaitRespectsContext(t *testing.T) {
	server := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := server.WaitForCallback(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallbackServer_RedirectURI(t *testing.T) {
	server := startTestServer(t)

	assert.Equal(t,
		fmt.Sprintf("http://localhost:%d/callback", server.Port()),
		server.RedirectURI())
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(53690, 53790)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 53690)
	assert.LessOrEqual(t, port, 53790)
}

func TestFindAvailablePort_EmptyRange(t *testing.T) {
	_, err := FindAvailablePort(53790, 53690)
	require.Error(t, err)
}
