package output

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

// Entry is one ledger row.
type Entry struct {
	Path          string `json:"path"`
	Modifications int    `json:"modifications"`
}

// sortedEntries flattens counts into rows ordered by path.
func sortedEntries(counts map[string]int) []Entry {
	entries := make([]Entry, 0, len(counts))
	for path, n := range counts {
		entries = append(entries, Entry{Path: path, Modifications: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// createResultFile creates <dir>/<name><ext>, creating dir if needed.
func createResultFile(dir, name string, format Format) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}
	path := ResultPath(dir, name, format)
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	return file, nil
}

// ResultPath returns where a writer of format rooted at dir puts name's results.
func ResultPath(dir, name string, format Format) string {
	return filepath.Join(dir, name+format.Extension())
}
