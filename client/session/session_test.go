package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)

	want := Session{Authenticated: true, Username: "saliha", Role: "admin", Token: "tok"}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, got)
}

func TestCorruptSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestVisibleRoutes(t *testing.T) {
	assert.Equal(t, []Route{RouteLogin}, Session{}.VisibleRoutes())
	assert.Equal(t, []Route{RouteLogin}, Session{Role: "admin"}.VisibleRoutes())

	user := Session{Authenticated: true, Username: "ahmed", Role: "user"}
	assert.Equal(t, []Route{RouteActivityForm, RouteActivityReport, RouteStatusForm, RouteStatusReport}, user.VisibleRoutes())
	assert.False(t, user.CanAccess(RouteAddUser))
	assert.False(t, user.CanAccess(RouteLogin))

	admin := Session{Authenticated: true, Username: "saliha", Role: "admin"}
	assert.True(t, admin.CanAccess(RouteAddUser))
	assert.True(t, admin.CanAccess(RouteChangePassword))
	assert.True(t, admin.CanAccess(RouteStatusReport))
	assert.Len(t, admin.VisibleRoutes(), 6)
}
