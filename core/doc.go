// Package core provides the foundational domain types and interfaces used by
// the host dispatcher. It defines the core abstractions for:
//
//   - Outcomes (classified units of a specialist agent's streamed output)
//   - StreamingAgent (the single invocation contract the task bridge consumes)
//   - Content / Parts (role-based message segments exchanged with models)
//   - Sessions (conversational continuity containers with event history)
//   - Pluggable stores for session state and task artifacts
//
// The package intentionally keeps implementation concerns (persistence, model
// providers, the protocol bridge) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
