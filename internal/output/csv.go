package output

import (
	"encoding/csv"
	"strconv"

	"github.com/cockroachdb/errors"
)

// CSVWriter writes <Dir>/<name>.csv with a path,modifications header.
type CSVWriter struct {
	Dir string
}

// Write outputs the counts as CSV, one row per path in path order.
func (w *CSVWriter) Write(name string, counts map[string]int) (err error) {
	if len(counts) == 0 {
		return nil
	}

	file, err := createResultFile(w.Dir, name, FormatCSV)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, file.Close())
	}()

	writer := csv.NewWriter(file)

	// Write header
	if err := writer.Write([]string{"path", "modifications"}); err != nil {
		return err
	}

	// Write data
	for _, e := range sortedEntries(counts) {
		if err := writer.Write([]string{e.Path, strconv.Itoa(e.Modifications)}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
