package survey

import (
	"encoding/json"
	"strings"
)

// ExtractSpan returns the text from the leftmost '{' to the rightmost '}'.
// The match is greedy, not brace-balanced: prose between two separate objects
// ends up inside the span and fails to parse later.
func ExtractSpan(text string) (string, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", ErrNoObjectFound
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", ErrNoObjectFound
	}
	return text[start : end+1], nil
}

// ParseAnswerSet decodes a span into a page answer set. Entries are not
// validated; see AnswerEntry.UnmarshalJSON.
func ParseAnswerSet(span string) (PageAnswerSet, error) {
	var set PageAnswerSet
	if err := json.Unmarshal([]byte(span), &set); err != nil {
		return nil, &MalformedJSONError{Span: span, Err: err}
	}
	if set == nil {
		set = PageAnswerSet{}
	}
	return set, nil
}

// Extract pulls the page answer set out of a raw model response.
func Extract(text string) (PageAnswerSet, error) {
	span, err := ExtractSpan(text)
	if err != nil {
		return nil, err
	}
	return ParseAnswerSet(span)
}
