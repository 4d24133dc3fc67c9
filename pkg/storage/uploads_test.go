package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStoreSaveAndRemove(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.SaveStream("roster.xlsx", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "-roster.xlsx"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadStoreRemoveMissingFile(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove(filepath.Join(store.Dir(), "gone.xlsx")))
}

func TestUploadStoreStripsDirectoryFromName(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.SaveStream("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, store.Dir(), filepath.Dir(path))
}
