// Package ledger folds a chronological stream of file changes into
// per-path modification counts for test files.
//
// The fold is order dependent: renames inherit the count their origin had
// at that point in history, so changes must be applied oldest first.
package ledger

import (
	"github.com/masmgr/testledger/internal/classify"
	"github.com/masmgr/testledger/internal/git"
)

// Ledger counts how many commits touched each test file path.
// A Ledger is owned by a single traversal and is not safe for concurrent use.
type Ledger struct {
	lang   classify.Language
	counts map[string]int
}

// New creates an empty ledger that only tracks test files of lang.
func New(lang classify.Language) *Ledger {
	return &Ledger{
		lang:   lang,
		counts: make(map[string]int),
	}
}

// Apply folds one change into the ledger. Changes whose Filename is not a
// test file for the ledger's language are ignored.
func (l *Ledger) Apply(change git.FileChange) {
	if !classify.IsTestFile(change.Filename, l.lang) {
		return
	}

	switch change.Type {
	case git.ChangeAdd, git.ChangeModify:
		l.touch(change.CurrentPath)
	case git.ChangeRename:
		l.rename(change.PreviousPath, change.CurrentPath)
	case git.ChangeDelete:
		// Deleting counts as a touch; the key is kept so a later re-add
		// resumes from here.
		if _, ok := l.counts[change.PreviousPath]; ok {
			l.counts[change.PreviousPath]++
		}
	}
}

// ApplyAll folds every change of a commit in order.
func (l *Ledger) ApplyAll(changes []git.FileChange) {
	for _, c := range changes {
		l.Apply(c)
	}
}

func (l *Ledger) touch(path string) {
	if path == "" {
		return
	}
	l.counts[path]++
}

// rename gives the new path its origin's count plus this commit. An origin
// the ledger never saw seeds both paths at 1, even when only the new name
// is a test file: the file became a test by being renamed.
func (l *Ledger) rename(from, to string) {
	if to == "" {
		return
	}
	if n, ok := l.counts[from]; ok {
		l.counts[to] = n + 1
		return
	}
	if from != "" {
		l.counts[from] = 1
	}
	l.counts[to] = 1
}

// Count returns the count for path and whether it is tracked.
func (l *Ledger) Count(path string) (int, bool) {
	n, ok := l.counts[path]
	return n, ok
}

// Len returns the number of tracked paths.
func (l *Ledger) Len() int {
	return len(l.counts)
}

// Snapshot returns a copy of the current counts.
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}
