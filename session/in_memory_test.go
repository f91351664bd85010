package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cksruf91/a2a-server-client/core"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Get(core.SessionKey{AppName: "app", UserID: "u", SessionID: "s"})
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestInMemoryStore_CreateAndGetClone(t *testing.T) {
	store := NewInMemoryStore()
	key := core.SessionKey{AppName: "app", UserID: "u", SessionID: "s"}

	created, err := store.Create(key)
	require.NoError(t, err)
	assert.Equal(t, "s", created.ID)

	got, err := store.Get(key)
	require.NoError(t, err)

	// Mutating the returned clone must not leak into the store.
	got.Turns = append(got.Turns, core.NewTextContent("user", "leak?"))
	again, err := store.Get(key)
	require.NoError(t, err)
	assert.Empty(t, again.Turns)
}

func TestInMemoryStore_AddTurnAndApplyDelta(t *testing.T) {
	store := NewInMemoryStore()
	key := core.SessionKey{AppName: "app", UserID: "u", SessionID: "s"}

	require.NoError(t, store.AddTurn(key, core.NewTextContent("user", "hi")))
	require.NoError(t, store.AddTurn(key, core.NewTextContent("assistant", "hello")))
	require.NoError(t, store.ApplyDelta(key, map[string]any{"topic": "greetings"}))

	sess, err := store.Get(key)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 2)
	assert.Equal(t, "hi", sess.Turns[0].JoinedText())
	assert.Equal(t, "greetings", sess.State["topic"])
}
