package survey

import "sync"

// Schema is the ordered, deduplicated list of question identifiers that
// defines the table's answer columns. It is immutable once built.
type Schema struct {
	ids []QuestionID
}

// BuildSchema dedupes ids and sorts them by CompareIDs. The result does not
// depend on the order ids were observed in.
func BuildSchema(ids []QuestionID) Schema {
	seen := make(map[QuestionID]struct{}, len(ids))
	unique := make([]QuestionID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	SortIDs(unique)
	return Schema{ids: unique}
}

// Len returns the number of answer columns.
func (s Schema) Len() int { return len(s.ids) }

// IDs returns a copy of the column identifiers in order.
func (s Schema) IDs() []QuestionID {
	out := make([]QuestionID, len(s.ids))
	copy(out, s.ids)
	return out
}

// At returns the i-th column identifier.
func (s Schema) At(i int) QuestionID { return s.ids[i] }

// Contains reports whether id is a column.
func (s Schema) Contains(id QuestionID) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Header returns the table header: response_id followed by the columns.
func (s Schema) Header() []string {
	header := make([]string, 0, len(s.ids)+1)
	header = append(header, ResponseIDColumn)
	return append(header, s.ids...)
}

// SchemaBuilder accumulates identifiers until Freeze is called. After that it
// ignores new observations and always returns the same schema.
type SchemaBuilder struct {
	mu       sync.Mutex
	observed []QuestionID
	schema   Schema
	frozen   bool
}

// NewSchemaBuilder returns an open builder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{}
}

// Observe records the identifiers of one page. It is a no-op once frozen.
func (b *SchemaBuilder) Observe(page PageAnswerSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return
	}
	b.observed = append(b.observed, page.IDs()...)
}

// Freeze builds the schema on first call and returns it on every call.
func (b *SchemaBuilder) Freeze() Schema {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.frozen {
		b.schema = BuildSchema(b.observed)
		b.observed = nil
		b.frozen = true
	}
	return b.schema
}

// Frozen reports whether Freeze has been called.
func (b *SchemaBuilder) Frozen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frozen
}
