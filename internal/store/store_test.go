// File: internal/store/store_test.go
package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sessionFixture struct {
	URL     string   `json:"url"`
	History []string `json:"history"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "sessions"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := newTestStore(t)

	in := sessionFixture{URL: "https://example.com", History: []string{"a", "b"}}
	require.NoError(t, s.Save("example.com", in))

	var out sessionFixture
	require.NoError(t, s.Load("example.com", &out))
	assert.Equal(t, in, out)
}

func TestSaveOverwritesPreviousState(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("page", sessionFixture{URL: "https://old.example.com"}))
	require.NoError(t, s.Save("page", sessionFixture{URL: "https://new.example.com"}))

	var out sessionFixture
	require.NoError(t, s.Load("page", &out))
	assert.Equal(t, "https://new.example.com", out.URL)
}

func TestLoadMissingState(t *testing.T) {
	s := newTestStore(t)

	var out sessionFixture
	err := s.Load("never-saved", &out)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRejectsUnsafePageIDs(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"", "../escape", "a/b", "a b"} {
		assert.Error(t, s.Save(id, sessionFixture{}), "id %q", id)
		assert.Error(t, s.Load(id, &sessionFixture{}), "id %q", id)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	s, err := New(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Save("page", sessionFixture{URL: "https://example.com"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "page.json", entries[0].Name())
}
