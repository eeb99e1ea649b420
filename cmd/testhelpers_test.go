package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/urfave/cli/v2"
)

// createTestRepo creates a repository named name under a temporary directory.
func createTestRepo(t *testing.T, name string) (string, *git.Worktree) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to initialize git repo: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	return dir, w
}

// writeFiles writes and stages files in the worktree.
func writeFiles(t *testing.T, w *git.Worktree, contents map[string]string) {
	t.Helper()
	root := w.Filesystem.Root()
	for rel, content := range contents {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := w.Add(rel); err != nil {
			t.Fatalf("Failed to add file: %v", err)
		}
	}
}

// commitAt commits the staged changes with a fixed timestamp.
func commitAt(t *testing.T, w *git.Worktree, message string, when time.Time) {
	t.Helper()
	sig := &object.Signature{Name: "Test Author", Email: "test@example.com", When: when}
	if _, err := w.Commit(message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
}

// testApp returns the CLI app with captured output and without os.Exit.
func testApp() (*cli.App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app, &stdout, &stderr
}

// isolateHome keeps a developer's ~/.testledger.yaml out of the tests.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}
