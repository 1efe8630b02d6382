// Package driving provides interfaces for the application's entry points
// (primary/inbound ports). CLI, TUI and MCP adapters depend on these
// interfaces, never on the service implementations.
package driving
