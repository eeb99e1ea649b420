package git

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
)

// pathFilter decides which file paths a walk reports.
// Extensions are turned into "**/*<ext>" globs; every pattern is validated
// up front so matching itself cannot fail.
type pathFilter struct {
	extensions []string
	include    []string
	exclude    []string
	cache      map[string]bool
}

func newPathFilter(opts WalkOptions) (*pathFilter, error) {
	f := &pathFilter{cache: make(map[string]bool)}

	for _, ext := range opts.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions = append(f.extensions, "**/*"+ext)
	}

	for _, p := range opts.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Newf("invalid include pattern %q", p)
		}
		f.include = append(f.include, p)
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Newf("invalid exclude pattern %q", p)
		}
		f.exclude = append(f.exclude, p)
	}

	return f, nil
}

// matchChange keeps a change when either of its paths matches.
func (f *pathFilter) matchChange(c FileChange) bool {
	if c.CurrentPath != "" && f.match(c.CurrentPath) {
		return true
	}
	return c.PreviousPath != "" && f.match(c.PreviousPath)
}

func (f *pathFilter) match(path string) bool {
	if v, ok := f.cache[path]; ok {
		return v
	}
	v := f.evaluate(path)
	f.cache[path] = v
	return v
}

func (f *pathFilter) evaluate(path string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	if len(f.extensions) > 0 && !matchAny(f.extensions, path) {
		return false
	}

	// Check exclude patterns first
	if matchAny(f.exclude, path) {
		return false
	}

	// If no include patterns, accept all
	if len(f.include) == 0 {
		return true
	}
	return matchAny(f.include, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}
