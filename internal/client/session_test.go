package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/sprintsync/internal/models"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	store := NewFileTokenStore(path)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, store.Save(&SessionState{
		AccessToken: "tok",
		TokenType:   "bearer",
		UserID:      "demo",
		Email:       "demo@sprintsync.com",
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	state, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", state.AccessToken)
	assert.Equal(t, "demo@sprintsync.com", state.Email)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	state, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFileTokenStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access_token: [unterminated"), 0o600))

	_, err := NewFileTokenStore(path).Load()
	assert.Error(t, err)
}

func TestSession_Lifecycle(t *testing.T) {
	store := new(MemoryTokenStore)

	first := NewSession(store)
	require.NoError(t, first.Init())
	assert.False(t, first.Authenticated())
	assert.Nil(t, first.User())

	require.NoError(t, first.set("tok", &models.User{ID: "demo", Email: "demo@sprintsync.com", IsAdmin: false}))

	second := NewSession(store)
	require.NoError(t, second.Init())
	assert.Equal(t, "tok", second.Token())
	assert.Equal(t, "demo", second.User().ID)

	require.NoError(t, second.setToken("tok2"))
	assert.Equal(t, "tok2", second.Token())
	assert.Equal(t, "demo", second.User().ID)

	require.NoError(t, second.Teardown())
	assert.False(t, second.Authenticated())

	third := NewSession(store)
	require.NoError(t, third.Init())
	assert.False(t, third.Authenticated())
}
