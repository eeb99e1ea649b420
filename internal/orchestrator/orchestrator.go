// Package orchestrator runs the modification ledger over one repository:
// acquire a working copy, walk its history, release the copy, and hand the
// counts to a sink.
package orchestrator

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/masmgr/testledger/internal/classify"
	"github.com/masmgr/testledger/internal/git"
	"github.com/masmgr/testledger/internal/ledger"
	"github.com/masmgr/testledger/internal/workcopy"
)

// Task is one repository to analyze.
type Task struct {
	URL      string
	Language classify.Language
}

// Result is the outcome of a successfully processed repository.
type Result struct {
	Name     string
	URL      string
	Counts   map[string]int
	Commits  int // Commits with at least one matching file change
	Duration time.Duration
}

// Sink persists a repository's counts. Writing an empty mapping is a no-op.
type Sink interface {
	Write(name string, counts map[string]int) error
}

// Options tunes the history walk.
type Options struct {
	Include      []string
	Exclude      []string
	RenameDetect git.RenameDetectMode
}

// Processor processes repositories. It holds no per-repository state, so one
// Processor may serve many concurrent tasks as long as no two of them share
// a repository name.
type Processor struct {
	store    workcopy.Store
	provider git.HistoryProvider
	sink     Sink
	logger   *zap.Logger
	opts     Options
}

// New creates a Processor.
func New(store workcopy.Store, provider git.HistoryProvider, sink Sink, logger *zap.Logger, opts Options) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:    store,
		provider: provider,
		sink:     sink,
		logger:   logger,
		opts:     opts,
	}
}

// ProcessRepository runs one task to completion. Every error is returned as
// a *Failure and logged with the repository URL; it never affects other
// tasks. The working copy is removed on every path once acquired.
func (p *Processor) ProcessRepository(ctx context.Context, task Task) (Result, error) {
	start := time.Now()
	log := p.logger.With(zap.String("url", task.URL), zap.Stringer("language", task.Language))

	name, err := workcopy.RepoName(task.URL)
	if err != nil {
		return Result{}, p.fail(log, task, StageAcquiring, err)
	}
	log = log.With(zap.String("repository", name))

	counts, commits, stage, err := p.traverse(ctx, log, task, name)
	if err != nil {
		return Result{}, p.fail(log, task, stage, err)
	}

	log.Debug("stage", zap.Stringer("stage", StageFinalizing))
	if len(counts) > 0 {
		if err := p.sink.Write(name, counts); err != nil {
			return Result{}, p.fail(log, task, StageFinalizing, errors.Mark(errors.Wrapf(err, "write results for %s", name), ErrSink))
		}
	}

	result := Result{
		Name:     name,
		URL:      task.URL,
		Counts:   counts,
		Commits:  commits,
		Duration: time.Since(start),
	}
	log.Info("repository processed",
		zap.Int("commits", commits),
		zap.Int("test_files", len(counts)),
		zap.Duration("elapsed", result.Duration),
	)
	return result, nil
}

// traverse acquires the working copy, folds its history into a fresh ledger
// and releases the copy before returning. stage reports where an error
// happened.
func (p *Processor) traverse(ctx context.Context, log *zap.Logger, task Task, name string) (counts map[string]int, commits int, stage Stage, err error) {
	log.Debug("stage", zap.Stringer("stage", StageAcquiring))
	path, err := p.store.Acquire(ctx, task.URL, name)
	if err != nil {
		return nil, 0, StageAcquiring, errors.Mark(errors.Wrapf(err, "acquire working copy %s", name), ErrAcquisition)
	}
	defer p.release(log, path)

	log.Debug("stage", zap.Stringer("stage", StageTraversing), zap.String("path", path))
	l := ledger.New(task.Language)
	err = p.provider.Walk(ctx, git.WalkOptions{
		RepoPath:      path,
		Extensions:    []string{task.Language.Extension()},
		Include:       p.opts.Include,
		Exclude:       p.opts.Exclude,
		Chronological: true,
		NoMerges:      true,
		RenameDetect:  p.opts.RenameDetect,
	}, func(cs git.CommitChangeSet) error {
		commits++
		l.ApplyAll(cs.Changes)
		return nil
	})
	if err != nil {
		// The partial ledger is dropped with l.
		return nil, commits, StageTraversing, errors.Mark(errors.Wrapf(err, "walk history of %s", name), ErrTraversal)
	}

	return l.Snapshot(), commits, StageTraversing, nil
}

// release removes the working copy. Failures are logged and never change the
// task's outcome.
func (p *Processor) release(log *zap.Logger, path string) {
	if err := p.store.Release(path); err != nil {
		err = errors.Mark(errors.Wrapf(err, "remove working copy %s", path), ErrCleanup)
		log.Warn("working copy cleanup failed", zap.String("path", path), zap.Error(err))
		return
	}
	log.Debug("stage", zap.Stringer("stage", StageReleased))
}

func (p *Processor) fail(log *zap.Logger, task Task, stage Stage, err error) error {
	f := &Failure{URL: task.URL, Stage: stage, Err: err}
	log.Error("repository failed", zap.Stringer("stage", stage), zap.Error(err))
	log.Debug("stage", zap.Stringer("stage", StageFailed))
	return f
}
