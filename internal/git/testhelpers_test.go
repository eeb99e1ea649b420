package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// fixtureRepo is a throwaway repository built commit by commit.
type fixtureRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
	when time.Time
}

func newFixtureRepo(t *testing.T) *fixtureRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	return &fixtureRepo{
		t:    t,
		dir:  dir,
		repo: repo,
		wt:   wt,
		when: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixtureRepo) write(rel, content string) {
	f.t.Helper()
	full := filepath.Join(f.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		f.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		f.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := f.wt.Add(rel); err != nil {
		f.t.Fatalf("Add: %v", err)
	}
}

func (f *fixtureRepo) move(from, to string) {
	f.t.Helper()
	if _, err := f.wt.Move(from, to); err != nil {
		f.t.Fatalf("Move: %v", err)
	}
}

func (f *fixtureRepo) remove(rel string) {
	f.t.Helper()
	if _, err := f.wt.Remove(rel); err != nil {
		f.t.Fatalf("Remove: %v", err)
	}
}

// commit records the staged changes one hour after the previous commit.
func (f *fixtureRepo) commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	f.t.Helper()
	f.when = f.when.Add(time.Hour)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: f.when}
	hash, err := f.wt.Commit(msg, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   parents,
	})
	if err != nil {
		f.t.Fatalf("Commit: %v", err)
	}
	return hash
}

func (f *fixtureRepo) head() plumbing.Hash {
	f.t.Helper()
	ref, err := f.repo.Head()
	if err != nil {
		f.t.Fatalf("Head: %v", err)
	}
	return ref.Hash()
}
