package workcopy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveTree_ReadOnlyContents(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	objects := filepath.Join(root, "objects", "pack")
	require.NoError(t, os.MkdirAll(objects, 0o755))

	pack := filepath.Join(objects, "pack-1.pack")
	require.NoError(t, os.WriteFile(pack, []byte("pack"), 0o444))
	require.NoError(t, os.Chmod(objects, 0o555))
	t.Cleanup(func() {
		// Leave the temp dir removable if the assertion below fails.
		_ = os.Chmod(objects, 0o755)
	})

	require.NoError(t, RemoveTree(root))

	_, err := os.Stat(root)
	assert.True(t, os.IsNotExist(err), "working copy still exists: %v", err)
}

func TestRemoveTree_MissingPath(t *testing.T) {
	assert.NoError(t, RemoveTree(filepath.Join(t.TempDir(), "never-created")))
}

func TestMakeWritable(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "ro.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o400))

	require.NoError(t, makeWritable(root))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o200, "file is still read-only")
}

func TestCloneStore_AcquireFailureLeavesNothing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "staging")
	store := NewCloneStore(root)

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := store.Acquire(context.Background(), missing, "does-not-exist")
	require.Error(t, err)

	// The staging root is created even though the clone failed.
	info, statErr := os.Stat(root)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())

	_, statErr = os.Stat(filepath.Join(root, "does-not-exist"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCloneStore_AcquireReplacesStaleCopy(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "widgets")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "leftover"), []byte("x"), 0o644))

	source := t.TempDir()
	_, err := git.PlainInit(source, false)
	require.NoError(t, err)

	store := NewCloneStore(root)
	// Cloning an empty repository may or may not succeed depending on the
	// transport; either way the stale directory must be gone.
	path, err := store.Acquire(context.Background(), source, "widgets")
	if err == nil {
		assert.Equal(t, stale, path)
		require.NoError(t, store.Release(path))
	}

	_, statErr := os.Stat(filepath.Join(stale, "leftover"))
	assert.True(t, os.IsNotExist(statErr))
}
