package output

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// JSONWriter writes <Dir>/<name>.json.
type JSONWriter struct {
	Dir string
}

// JSONReport is the JSON output structure for one repository.
type JSONReport struct {
	Repository string  `json:"repository"`
	TestFiles  int     `json:"testFiles"`
	Items      []Entry `json:"items"`
}

// Write outputs the counts as an indented JSON document.
func (w *JSONWriter) Write(name string, counts map[string]int) (err error) {
	if len(counts) == 0 {
		return nil
	}

	file, err := createResultFile(w.Dir, name, FormatJSON)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, file.Close())
	}()

	report := JSONReport{
		Repository: name,
		TestFiles:  len(counts),
		Items:      sortedEntries(counts),
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
