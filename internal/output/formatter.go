// Package output persists per-repository ledgers and renders the end-of-run
// summary.
package output

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/masmgr/testledger/internal/orchestrator"
)

// Compile-time interface conformance checks.
var (
	_ ResultWriter      = (*CSVWriter)(nil)
	_ ResultWriter      = (*JSONWriter)(nil)
	_ orchestrator.Sink = (ResultWriter)(nil)
)

// Format represents the result file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// ResultWriter writes one repository's counts. An empty mapping writes
// nothing.
type ResultWriter interface {
	Write(name string, counts map[string]int) error
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
}

// Extension returns the file extension results of this format are written with.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".csv"
}

// NewResultWriter creates a writer for the given format rooted at dir.
func NewResultWriter(format Format, dir string) ResultWriter {
	switch format {
	case FormatJSON:
		return &JSONWriter{Dir: dir}
	default:
		return &CSVWriter{Dir: dir}
	}
}
