package workcopy

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
)

// Store hands out working copies under a staging root.
type Store interface {
	// Acquire materializes url as <root>/<name> and returns the local path.
	Acquire(ctx context.Context, url, name string) (string, error)
	// Release removes a working copy returned by Acquire.
	Release(path string) error
}

// Compile-time interface conformance check.
var _ Store = (*CloneStore)(nil)

// CloneStore clones repositories with go-git. Clones are bare: history
// traversal never needs a checkout.
type CloneStore struct {
	Root string
}

// NewCloneStore creates a store staging clones under root.
func NewCloneStore(root string) *CloneStore {
	return &CloneStore{Root: root}
}

// Acquire clones url into the staging root, replacing any stale copy left
// by an earlier run.
func (s *CloneStore) Acquire(ctx context.Context, url, name string) (string, error) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return "", errors.Wrapf(err, "create staging root %s", s.Root)
	}

	path := filepath.Join(s.Root, name)
	if _, err := os.Lstat(path); err == nil {
		if err := RemoveTree(path); err != nil {
			return "", errors.Wrapf(err, "remove stale working copy %s", path)
		}
	}

	_, err := git.PlainCloneContext(ctx, path, true, &git.CloneOptions{
		URL:  url,
		Tags: git.NoTags,
	})
	if err != nil {
		// A failed clone can leave a partial directory behind; the caller
		// only releases paths that were handed out.
		_ = RemoveTree(path)
		return "", errors.Wrapf(err, "clone %s", url)
	}
	return path, nil
}

// Release removes the working copy.
func (s *CloneStore) Release(path string) error {
	return RemoveTree(path)
}

// RemoveTree deletes path recursively. Git leaves pack files and object
// directories read-only; when the first attempt fails, everything under path
// is made writable and the removal is retried once.
func RemoveTree(path string) error {
	err := os.RemoveAll(path)
	if err == nil {
		return nil
	}

	if chmodErr := makeWritable(path); chmodErr != nil {
		return errors.CombineErrors(err, chmodErr)
	}
	if retryErr := os.RemoveAll(path); retryErr != nil {
		return errors.Wrapf(retryErr, "remove %s after clearing read-only attributes", path)
	}
	return nil
}

func makeWritable(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		mode := info.Mode().Perm() | 0o200
		if d.IsDir() {
			mode |= 0o700
		}
		return os.Chmod(p, mode)
	})
}
