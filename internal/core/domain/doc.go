// Package domain defines the core business entities for the Catalyst
// identity core.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Session: The currently authenticated user
//   - AuthRequest / CallbackResult: One authorization round trip
//   - ConnectorLink: A connector's link state machine
//   - LinkOutcome: The message a consent context sends its opener
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
