// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ExchangeClient: Trades an authorization code for a session
//   - SessionStore: Session persistence
//   - ConnectorAPI: Backend connector status and control
//   - ConsentLauncher: Opens the consent browsing context
//   - OutcomeBus: Message channel between consent context and opener
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
