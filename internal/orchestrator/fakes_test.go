package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/masmgr/testledger/internal/git"
)

// fakeStore creates plain directories instead of clones so tests can check
// that working copies are removed.
type fakeStore struct {
	root       string
	acquireErr error
	releaseErr error

	mu       sync.Mutex
	acquired []string
	released []string
}

func (s *fakeStore) Acquire(_ context.Context, _ string, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquireErr != nil {
		return "", s.acquireErr
	}
	path := filepath.Join(s.root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	s.acquired = append(s.acquired, path)
	return path, nil
}

func (s *fakeStore) Release(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, path)
	if s.releaseErr != nil {
		return s.releaseErr
	}
	return os.RemoveAll(path)
}

type memorySink struct {
	err error

	mu      sync.Mutex
	written map[string]map[string]int
}

func (s *memorySink) Write(name string, counts map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.written == nil {
		s.written = make(map[string]map[string]int)
	}
	s.written[name] = counts
	return nil
}

// routedProvider picks a provider by the working copy's directory name.
type routedProvider map[string]git.HistoryProvider

func (r routedProvider) Walk(ctx context.Context, opts git.WalkOptions, fn func(git.CommitChangeSet) error) error {
	return r[filepath.Base(opts.RepoPath)].Walk(ctx, opts, fn)
}

// panicProvider panics halfway through a walk.
type panicProvider struct{}

func (panicProvider) Walk(context.Context, git.WalkOptions, func(git.CommitChangeSet) error) error {
	panic("corrupt object")
}

// optsRecorder remembers the options it was called with.
type optsRecorder struct {
	opts git.WalkOptions
}

func (r *optsRecorder) Walk(_ context.Context, opts git.WalkOptions, _ func(git.CommitChangeSet) error) error {
	r.opts = opts
	return nil
}

func commit(sha string, changes ...git.FileChange) git.CommitChangeSet {
	return git.CommitChangeSet{Commit: git.CommitInfo{SHA: sha}, Changes: changes}
}
