package orchestrator

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Task-level failure classes. A task error is marked with one of these (or
// workcopy.ErrMalformedURL) so callers can match it with errors.Is.
var (
	ErrAcquisition = errors.New("working copy acquisition failed")
	ErrTraversal   = errors.New("history traversal failed")
	ErrCleanup     = errors.New("working copy cleanup failed")
	ErrSink        = errors.New("writing results failed")
)

// Failure describes a repository that could not be processed.
type Failure struct {
	URL   string
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("repository %s failed while %s: %v", f.URL, f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
