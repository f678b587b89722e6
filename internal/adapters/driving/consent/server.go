// Package consent implements the consent browsing context for OAuth flows:
// a local HTTP callback server paired with the system browser. It plays the
// popup's role from the web client - it completes the authorization round
// trip on its own and reports the outcome over the bus, never by touching
// opener state.
package consent

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CallbackServer receives the provider redirect on a local port and hands
// the raw callback query to whoever is waiting. Parsing the query is the
// caller's job; the server only does delivery and renders the closing page.
type CallbackServer struct {
	mu        sync.Mutex
	port      int
	queryChan chan url.Values
	errChan   chan error
	server    *http.Server
	listener  net.Listener
}

// NewCallbackServer creates a callback server for the given port.
// If port is 0, a random available port will be chosen on Start.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:      port,
		queryChan: make(chan url.Values, 1),
		errChan:   make(chan error, 1),
	}
}

// Start starts the callback server on the configured port.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Store the actual port (important when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	return nil
}

// handleCallback delivers the inbound redirect's query. Only the first
// delivery counts; a provider that redirects twice is ignored.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	select {
	case s.queryChan <- query:
	default:
	}

	w.Header().Set("Content-Type", "text/html")
	if reason := query.Get("error"); reason != "" {
		fmt.Fprint(w, closingHTML(
			fmt.Sprintf("Authorization failed: %s", html.EscapeString(reason)), ""))
		return
	}
	fmt.Fprint(w, closingHTML("Authorization successful!",
		"You can close this window and return to the application."))
}

// WaitForCallback blocks until the callback query arrives, the server fails
// or the context ends.
func (s *CallbackServer) WaitForCallback(ctx context.Context) (url.Values, error) {
	select {
	case query := <-s.queryChan:
		return query, nil
	case err := <-s.errChan:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts down the callback server.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect URI for this callback server.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.Port())
}

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}

func closingHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Catalyst - Authorization</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #F9F7F2;
        }
        .card {
            text-align: center;
            background: white;
            padding: 48px 64px;
            border-radius: 12px;
            box-shadow: 0 4px 6px -1px rgba(0,0,0,0.1);
        }
        h1 {
            color: #0B2341;
            margin: 0 0 8px 0;
            font-size: 24px;
            font-weight: 600;
        }
        p {
            color: #64748B;
            margin: 0;
            font-size: 16px;
        }
    </style>
</head>
<body>
    <div class="card">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, title, message)
}
