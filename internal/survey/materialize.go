package survey

// Materialize projects answers onto schema. Missing identifiers, and entries
// with a nil answer, become Placeholder. Identifiers not in schema are ignored.
func Materialize(responseID int, answers SurveyAnswerSet, schema Schema) Row {
	row := Row{
		ResponseID: responseID,
		Answers:    make([]any, schema.Len()),
	}
	for i := 0; i < schema.Len(); i++ {
		entry, ok := answers[schema.At(i)]
		if !ok || entry.Answer == nil {
			row.Answers[i] = Placeholder
			continue
		}
		row.Answers[i] = entry.Answer
	}
	return row
}
