// Package survey turns per-page LLM responses into uniform table rows.
//
// A run moves through three steps:
//   - Extract pulls one JSON answer set out of each page's free-text response
//   - the first survey instance's identifiers are frozen into a Schema,
//     ordered by natural sort (CompareIDs)
//   - every instance's merged answers are projected onto that Schema by
//     Materialize, one Row per instance
//
// The Aggregator drives all three over a page sequence.
package survey

import (
	"encoding/json"
)

// QuestionID names a question ("2") or a question option ("1_3").
type QuestionID = string

// Placeholder is the cell value for a schema column with no recorded answer.
const Placeholder = ""

// ResponseIDColumn is the first header cell of every table.
const ResponseIDColumn = "response_id"

// AnswerEntry is one extracted question/option and its value.
// Answer is a bool for checkbox options, a string for open text, and nil when
// the model omitted it or sent null.
type AnswerEntry struct {
	Question string `json:"question"`
	Answer   any    `json:"answer"`
}

// UnmarshalJSON decodes an entry loosely. Anything that is not an object, or
// has a non-string question, decodes to a zero entry instead of failing the
// whole page.
func (e *AnswerEntry) UnmarshalJSON(data []byte) error {
	*e = AnswerEntry{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	if raw, ok := fields["question"]; ok {
		var q string
		if err := json.Unmarshal(raw, &q); err == nil {
			e.Question = q
		}
	}
	if raw, ok := fields["answer"]; ok {
		var a any
		if err := json.Unmarshal(raw, &a); err == nil {
			e.Answer = a
		}
	}
	return nil
}

// PageAnswerSet is the answer set extracted from a single page.
type PageAnswerSet map[QuestionID]AnswerEntry

// IDs returns the identifiers in the set, in no particular order.
func (p PageAnswerSet) IDs() []QuestionID {
	ids := make([]QuestionID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	return ids
}

// SurveyAnswerSet is the union of one survey instance's page answer sets.
type SurveyAnswerSet map[QuestionID]AnswerEntry

// Merge copies page into s. Entries from page overwrite existing ones.
func (s SurveyAnswerSet) Merge(page PageAnswerSet) {
	for id, entry := range page {
		s[id] = entry
	}
}

// Row is one output table row. Answers[i] belongs to the schema's i-th column.
type Row struct {
	ResponseID int   `json:"response_id"`
	Answers    []any `json:"answers"`
}

// RowSink receives the frozen schema once, then every row in instance order.
type RowSink interface {
	WriteHeader(schema Schema) error
	WriteRow(row Row) error
}
