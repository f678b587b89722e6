package domain

import (
	"fmt"
	"net/url"
)

// AuthRequest describes one outbound authorization redirect. It is built per
// sign-in attempt from static configuration and discarded after navigation.
type AuthRequest struct {
	// Provider is the OAuth authority host suffix (e.g. "google.com").
	Provider string
	// ClientID is the OAuth client id from the provider's console.
	ClientID string
	// RedirectURI must exactly match the URI registered with the provider.
	RedirectURI string
	// Scopes are the OAuth scopes to request.
	Scopes []string
	// AccessType is "offline" when a refresh token is wanted.
	AccessType string
}

// CallbackResultKind discriminates what an inbound callback carried.
type CallbackResultKind string

const (
	// CallbackCode means an authorization code was delivered.
	CallbackCode CallbackResultKind = "code"
	// CallbackError means the provider reported an error.
	CallbackError CallbackResultKind = "error"
)

// CallbackResult holds what the provider sent back on the callback route.
// Exactly one of Code and ErrorReason is set.
type CallbackResult struct {
	Kind        CallbackResultKind
	Code        string
	ErrorReason string
}

// ParseCallback extracts the authorization code or the provider error from
// the query parameters of an inbound callback redirect. The error parameter
// is checked first: confirming a denial must never trigger a code exchange.
func ParseCallback(query url.Values) (CallbackResult, error) {
	if reason := query.Get("error"); reason != "" {
		return CallbackResult{Kind: CallbackError, ErrorReason: reason},
			fmt.Errorf("%w: %s", ErrProviderDenied, reason)
	}
	code := query.Get("code")
	if code == "" {
		return CallbackResult{}, ErrMissingCode
	}
	return CallbackResult{Kind: CallbackCode, Code: code}, nil
}
