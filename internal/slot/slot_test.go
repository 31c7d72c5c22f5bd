package slot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEmptyUntilSaved(t *testing.T) {
	m := NewMemory("")
	assert.Equal(t, DefaultName, m.Name())

	_, err := m.Load()
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, m.Save([]byte("one")))
	require.NoError(t, m.Save([]byte("two")))

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
	assert.Equal(t, 2, m.Saves())
}

func TestMemoryFailSaves(t *testing.T) {
	m := NewMemoryWith("notes", []byte("kept"))
	boom := errors.New("disk full")
	m.FailSaves(boom)

	assert.ErrorIs(t, m.Save([]byte("lost")), boom)
	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))

	m.FailSaves(nil)
	assert.NoError(t, m.Save([]byte("next")))
}

func TestFileLoadMissingIsEmpty(t *testing.T) {
	f := NewFile(t.TempDir(), "")
	_, err := f.Load()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFileSaveCreatesDirAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	f := NewFile(dir, "notes")
	assert.True(t, strings.HasSuffix(f.Path(), "notes.json"))

	require.NoError(t, f.Save([]byte(`[1]`)))
	require.NoError(t, f.Save([]byte(`[2]`)))

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir, "notes")
	require.NoError(t, f.Save([]byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), tempFilePrefix), "leftover %s", e.Name())
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scribble.db")
	s, err := OpenSQLite(path, "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, s.Save([]byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Save([]byte(`[{"id":"b"}]`)))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"b"}]`, string(got))
}

func TestSQLiteReopenKeepsValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scribble.db")
	s, err := OpenSQLite(path, "notes")
	require.NoError(t, err)
	require.NoError(t, s.Save([]byte("persisted")))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path, "notes")
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}
