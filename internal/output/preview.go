package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Preview is the header and leading rows of a written table.
type Preview struct {
	Path    string     `json:"path" yaml:"path"`
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// ReadPreview reads the header and up to n data rows from a CSV file.
func ReadPreview(path string, n int) (*Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("output file %s is empty", path)
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	p := &Preview{Path: path, Columns: header, Rows: [][]string{}}
	for len(p.Rows) < n {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		p.Rows = append(p.Rows, rec)
	}
	return p, nil
}
