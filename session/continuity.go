package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cksruf91/a2a-server-client/core"
	"github.com/cksruf91/a2a-server-client/logging"
)

// ContinuityManagerOptions configure a ContinuityManager.
type ContinuityManagerOptions struct {
	// Store holds the sessions. Defaults to NewInMemoryStore().
	Store core.SessionStore
	// Logger receives resolution diagnostics.
	Logger logging.Logger
}

// ContinuityManager exclusively owns session creation and lookup for the
// host. It maps a caller-supplied context identifier to a session that lives
// for the whole conversation: a present context id reuses the session bound
// to it (creating one on first sight), an absent context id always mints a
// fresh session.
type ContinuityManager struct {
	appName string
	store   core.SessionStore
	logger  logging.Logger
}

// NewContinuityManager constructs a manager scoped to one application name.
func NewContinuityManager(appName string, optFns ...func(o *ContinuityManagerOptions)) *ContinuityManager {
	opts := ContinuityManagerOptions{
		Store:  NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ContinuityManager{appName: appName, store: opts.Store, logger: opts.Logger}
}

// Resolve returns the session id to use for (userID, contextID).
//
// A present contextID reuses the session already bound to it; when none
// exists yet one is created under that id. An existing session is never
// silently overwritten. An empty contextID always yields a freshly minted
// session.
func (m *ContinuityManager) Resolve(userID, contextID string) (string, error) {
	if contextID == "" {
		key := core.SessionKey{AppName: m.appName, UserID: userID, SessionID: uuid.NewString()}
		if _, err := m.store.Create(key); err != nil {
			return "", fmt.Errorf("failed to create session: %w", err)
		}
		m.logger.Debug("minted fresh session", "user_id", userID, "session_id", key.SessionID)
		return key.SessionID, nil
	}

	key := core.SessionKey{AppName: m.appName, UserID: userID, SessionID: contextID}
	if sess, err := m.store.Get(key); err == nil {
		m.logger.Debug("reusing session", "user_id", userID, "session_id", sess.ID)
		return sess.ID, nil
	} else if !errors.Is(err, core.ErrSessionNotFound) {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}

	if _, err := m.store.Create(key); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	m.logger.Debug("created session for context", "user_id", userID, "session_id", contextID)
	return contextID, nil
}
