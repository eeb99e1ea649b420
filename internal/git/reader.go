package git

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// GoGitProvider walks history in-process with go-git.
type GoGitProvider struct{}

// NewGoGitProvider creates a go-git backed history provider.
func NewGoGitProvider() *GoGitProvider {
	return &GoGitProvider{}
}

// Walk opens the repository at opts.RepoPath and reports every commit's
// matching file changes. Commits with no matching change are skipped.
func (p *GoGitProvider) Walk(ctx context.Context, opts WalkOptions, fn func(CommitChangeSet) error) error {
	filter, err := newPathFilter(opts)
	if err != nil {
		return err
	}

	repo, err := git.PlainOpen(opts.RepoPath)
	if err != nil {
		return errors.Wrapf(err, "open repository %s", opts.RepoPath)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Empty repository: nothing to walk.
			return nil
		}
		return errors.Wrap(err, "resolve HEAD")
	}

	hashes, err := commitHashes(repo, ref.Hash(), opts.NoMerges)
	if err != nil {
		return err
	}
	if opts.Chronological {
		for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
			hashes[i], hashes[j] = hashes[j], hashes[i]
		}
	}

	diffOpts := diffTreeOptions(opts.RenameDetect)

	for _, h := range hashes {
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := repo.CommitObject(h)
		if err != nil {
			return errors.Wrapf(err, "load commit %s", h)
		}

		changes, err := commitChanges(ctx, c, diffOpts, filter)
		if err != nil {
			return errors.Wrapf(err, "diff commit %s", h)
		}
		if len(changes) == 0 {
			continue
		}

		if err := fn(CommitChangeSet{Commit: commitInfo(c), Changes: changes}); err != nil {
			return err
		}
	}

	return nil
}

// commitHashes lists reachable commits newest first. Only hashes are kept so
// the full history is never held in memory as diffs.
func commitHashes(repo *git.Repository, from plumbing.Hash, noMerges bool) ([]plumbing.Hash, error) {
	cIter, err := repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, errors.Wrap(err, "read log")
	}
	defer cIter.Close()

	var hashes []plumbing.Hash
	err = cIter.ForEach(func(c *object.Commit) error {
		if noMerges && c.NumParents() > 1 {
			return nil
		}
		hashes = append(hashes, c.Hash)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "iterate log")
	}
	return hashes, nil
}

func diffTreeOptions(mode RenameDetectMode) *object.DiffTreeOptions {
	opts := *object.DefaultDiffTreeOptions
	switch mode {
	case RenameDetectOff:
		opts.DetectRenames = false
	case RenameDetectSimple:
		opts.DetectRenames = true
		opts.OnlyExactRenames = true
	case RenameDetectAggressive:
		opts.DetectRenames = true
		opts.OnlyExactRenames = false
	}
	return &opts
}

// commitChanges diffs c against its first parent, or against the empty tree
// for a root commit.
func commitChanges(ctx context.Context, c *object.Commit, diffOpts *object.DiffTreeOptions, filter *pathFilter) ([]FileChange, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	parentTree := &object.Tree{}
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}

	diff, err := object.DiffTreeWithOptions(ctx, parentTree, tree, diffOpts)
	if err != nil {
		return nil, err
	}

	var changes []FileChange
	for _, change := range diff {
		fc, ok, err := toFileChange(change)
		if err != nil {
			return nil, err
		}
		if !ok || !filter.matchChange(fc) {
			continue
		}
		changes = append(changes, fc)
	}
	return changes, nil
}

func toFileChange(change *object.Change) (FileChange, bool, error) {
	if !change.From.TreeEntry.Mode.IsFile() && !change.To.TreeEntry.Mode.IsFile() {
		return FileChange{}, false, nil
	}

	action, err := change.Action()
	if err != nil {
		return FileChange{}, false, err
	}

	from, to := change.From.Name, change.To.Name
	switch action {
	case merkletrie.Insert:
		return NewFileChange(ChangeAdd, "", to), true, nil
	case merkletrie.Delete:
		return NewFileChange(ChangeDelete, from, ""), true, nil
	case merkletrie.Modify:
		if from != to {
			return NewFileChange(ChangeRename, from, to), true, nil
		}
		return NewFileChange(ChangeModify, "", to), true, nil
	default:
		return NewFileChange(ChangeOther, from, to), true, nil
	}
}

func commitInfo(c *object.Commit) CommitInfo {
	// Extract first line of commit message
	message := c.Message
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		message = message[:idx]
	}

	return CommitInfo{
		SHA:     c.Hash.String(),
		When:    c.Committer.When,
		Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
		Message: message,
	}
}
