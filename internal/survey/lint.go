package survey

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// answerSetSchema describes a well-formed page response. It is only used to
// warn about odd model output; extraction never rejects a page because of it.
const answerSetSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"question": {"type": "string"},
			"answer": {"type": ["boolean", "string"]}
		},
		"required": ["question", "answer"]
	}
}`

var (
	lintOnce   sync.Once
	lintSchema *jsonschema.Schema
	lintErr    error
)

func compiledLintSchema() (*jsonschema.Schema, error) {
	lintOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("answer_set.json", strings.NewReader(answerSetSchema)); err != nil {
			lintErr = fmt.Errorf("failed to load answer set schema: %w", err)
			return
		}
		lintSchema, lintErr = compiler.Compile("answer_set.json")
		if lintErr != nil {
			lintErr = fmt.Errorf("failed to compile answer set schema: %w", lintErr)
		}
	})
	return lintSchema, lintErr
}

// LintSpan checks a parsed span against the expected answer set shape.
// A nil return means every entry has a string question and a bool or string
// answer.
func LintSpan(span string) error {
	schema, err := compiledLintSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal([]byte(span), &doc); err != nil {
		return &MalformedJSONError{Span: span, Err: err}
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("answer set does not match expected shape: %w", err)
	}
	return nil
}
