// Package a2a implements the agent-to-agent protocol boundary of the host:
// the capability card / task / event data model, card resolution and
// aggregation across specialist endpoints, a minimal message client for
// invoking specialists, and the task execution bridge that converts a
// streaming agent's outcomes into the fixed task lifecycle the protocol
// expects.
//
// The wire encoding mirrors the external A2A contract; this package honors
// that contract at the boundary without redesigning it.
package a2a
