// Package session provides conversational continuity: an in-memory
// SessionStore implementation and the ContinuityManager that maps a
// caller-supplied context identifier to a durable-for-the-conversation
// session, creating one lazily.
package session
