// Package workcopy manages disposable local clones of the repositories
// being analyzed.
package workcopy

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformedURL is returned when no repository name can be derived from a URL.
var ErrMalformedURL = errors.New("malformed repository URL")

// RepoName derives the short repository name from a URL: the last path
// segment with any ".git" suffix removed. A URL without a "/" or ending in
// "/" is malformed.
func RepoName(url string) (string, error) {
	url = strings.TrimSpace(url)

	idx := strings.LastIndex(url, "/")
	if idx == -1 || idx == len(url)-1 {
		return "", errors.Wrapf(ErrMalformedURL, "%q", url)
	}

	name := strings.TrimSuffix(url[idx+1:], ".git")
	if name == "" || name == "." || name == ".." {
		return "", errors.Wrapf(ErrMalformedURL, "%q", url)
	}
	return name, nil
}
