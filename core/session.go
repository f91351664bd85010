package core

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned by SessionStore.Get when no session exists
// for the requested key.
var ErrSessionNotFound = errors.New("session not found")

// SessionKey identifies a session by application, user and session id. All
// three components participate in lookup so two users never share continuity
// state even when their callers reuse context identifiers.
type SessionKey struct {
	AppName   string
	UserID    string
	SessionID string
}

// Session represents a conversational continuity container tracking mutable
// key/value state plus an ordered conversation history. It is safe for
// concurrent access.
//
// Contract:
//   - State mutations update the Updated timestamp
//   - History returns a defensive copy to avoid external mutation
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	ID      string         `json:"id"`
	AppName string         `json:"app_name"`
	UserID  string         `json:"user_id"`
	State   map[string]any `json:"state"`
	Turns   []Content      `json:"turns"`
	Created time.Time      `json:"created"`
	Updated time.Time      `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a new session bound to the given key.
func NewSession(key SessionKey) *Session {
	now := time.Now()
	return &Session{
		ID:      key.SessionID,
		AppName: key.AppName,
		UserID:  key.UserID,
		State:   map[string]any{},
		Turns:   []Content{},
		Created: now,
		Updated: now,
	}
}

// Key returns the full lookup key for this session.
func (s *Session) Key() SessionKey {
	return SessionKey{AppName: s.AppName, UserID: s.UserID, SessionID: s.ID}
}

// GetState returns the value and existence flag for a state key.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.State[key]
	return v, ok
}

// SetState sets a key/value pair in session state updating the Updated timestamp.
func (s *Session) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State[key] = value
	s.Updated = time.Now()
}

// MergeState merges the provided key/value pairs into State.
func (s *Session) MergeState(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range delta {
		s.State[k] = v
	}
	s.Updated = time.Now()
}

// AddTurn appends a conversation turn to the history updating Updated.
func (s *Session) AddTurn(c Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Turns = append(s.Turns, c)
	s.Updated = time.Now()
}

// History returns a defensive copy of the full conversation history.
func (s *Session) History() []Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Content, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:      s.ID,
		AppName: s.AppName,
		UserID:  s.UserID,
		State:   make(map[string]any, len(s.State)),
		Turns:   make([]Content, len(s.Turns)),
		Created: s.Created,
		Updated: s.Updated,
	}
	for k, v := range s.State {
		clone.State[k] = v
	}
	copy(clone.Turns, s.Turns)
	return clone
}

// SessionStore persists sessions and their evolving state / history.
//
// Get must return ErrSessionNotFound for unknown keys rather than creating
// lazily; the continuity manager owns creation decisions.
type SessionStore interface {
	Create(key SessionKey) (*Session, error)
	Get(key SessionKey) (*Session, error)
	AddTurn(key SessionKey, c Content) error
	ApplyDelta(key SessionKey, delta map[string]any) error
}
