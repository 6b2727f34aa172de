package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jackzampolin/surveytab/internal/survey"
)

// ErrHeaderNotWritten is returned when a row arrives before the header.
var ErrHeaderNotWritten = errors.New("csv header not written")

// CSVWriter writes survey rows as CSV. It implements survey.RowSink.
// Every row is flushed as it is written, so an interrupted run keeps the
// rows completed so far.
type CSVWriter struct {
	w       *csv.Writer
	closer  io.Closer
	columns int
	rows    int
	path    string
}

// NewCSVWriter writes CSV to w. The caller owns w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), columns: -1}
}

// CreateCSV creates (or truncates) the file at path and writes CSV to it.
func CreateCSV(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	cw := NewCSVWriter(f)
	cw.closer = f
	cw.path = path
	return cw, nil
}

// Path returns the file path for writers made by CreateCSV.
func (c *CSVWriter) Path() string {
	return c.path
}

// Rows returns the number of data rows written.
func (c *CSVWriter) Rows() int {
	return c.rows
}

// WriteHeader writes response_id followed by the schema columns.
func (c *CSVWriter) WriteHeader(schema survey.Schema) error {
	if c.columns >= 0 {
		return errors.New("csv header already written")
	}
	header := schema.Header()
	if err := c.write(header); err != nil {
		return err
	}
	c.columns = len(header)
	return nil
}

// WriteRow writes the response id followed by one formatted cell per column.
func (c *CSVWriter) WriteRow(row survey.Row) error {
	if c.columns < 0 {
		return ErrHeaderNotWritten
	}
	if len(row.Answers)+1 != c.columns {
		return fmt.Errorf("row %d has %d cells, header has %d columns", row.ResponseID, len(row.Answers)+1, c.columns)
	}

	record := make([]string, 0, c.columns)
	record = append(record, strconv.Itoa(row.ResponseID))
	for _, v := range row.Answers {
		record = append(record, FormatCell(v))
	}
	if err := c.write(record); err != nil {
		return err
	}
	c.rows++
	return nil
}

func (c *CSVWriter) write(record []string) error {
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("failed to write csv record: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// Close flushes pending data and closes the underlying file, if owned.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
		c.closer = nil
	}
	return err
}

// FormatCell renders an answer as CSV cell text. Strings are verbatim,
// booleans are true/false, numbers use the shortest exact decimal, nil is
// the placeholder, and anything else is compact JSON.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return survey.Placeholder
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case json.Number:
		return x.String()
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

var _ survey.RowSink = (*CSVWriter)(nil)
