// Package logging provides a minimal logging interface and adapters for the
// host dispatcher.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that components use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - HostLogger with domain helpers for model and tool call metrics
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
