package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	return map[string]Storage{
		"file":   NewFileStorage(filepath.Join(t.TempDir(), "nested", "data")),
		"memory": NewMemoryStorage(),
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.GetItem("calendar_assistant_auth")
			require.NoError(t, err)
			assert.False(t, ok, "fresh storage should be empty")

			require.NoError(t, s.SetItem("calendar_assistant_auth", `{"isAuthenticated":true}`))
			v, ok, err := s.GetItem("calendar_assistant_auth")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"isAuthenticated":true}`, v)

			require.NoError(t, s.SetItem("calendar_assistant_auth", "second"))
			v, _, _ = s.GetItem("calendar_assistant_auth")
			assert.Equal(t, "second", v)

			require.NoError(t, s.RemoveItem("calendar_assistant_auth"))
			_, ok, err = s.GetItem("calendar_assistant_auth")
			require.NoError(t, err)
			assert.False(t, ok)

			// removing twice is fine
			require.NoError(t, s.RemoveItem("calendar_assistant_auth"))
		})
	}
}

func TestStorage_InvalidKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "..", "../escape", "a/b", "with space"} {
				_, _, err := s.GetItem(key)
				assert.ErrorIs(t, err, ErrInvalidKey, key)
				assert.ErrorIs(t, s.SetItem(key, "x"), ErrInvalidKey, key)
				assert.ErrorIs(t, s.RemoveItem(key), ErrInvalidKey, key)
			}
		})
	}
}

func TestFileStorage_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir)
	require.NoError(t, s.SetItem("k", "v"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())
}
