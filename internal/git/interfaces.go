package git

import "context"

// HistoryProvider walks the commit history of a local repository.
// Walk hands commits to fn one at a time; the walk cannot be restarted and
// stops at the first error returned by fn.
type HistoryProvider interface {
	Walk(ctx context.Context, opts WalkOptions, fn func(CommitChangeSet) error) error
}

// Compile-time interface conformance checks.
var (
	_ HistoryProvider = (*GoGitProvider)(nil)
	_ HistoryProvider = (*CLIProvider)(nil)
	_ HistoryProvider = (*MockProvider)(nil)
)
