// Package survey holds the embedded instruction sent with every scanned page.
package survey

import (
	_ "embed"

	"github.com/jackzampolin/surveytab/internal/prompts"
)

//go:embed page.tmpl
var pagePrompt string

// PagePromptKey identifies the per-page instruction.
const PagePromptKey = "survey.page"

// PagePrompt returns the embedded per-page instruction.
func PagePrompt() string {
	return pagePrompt
}

// RegisterPrompts registers the survey prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PagePromptKey,
		Text:        pagePrompt,
		Description: "Survey page transcription - one JSON entry per question or option",
	})
}
