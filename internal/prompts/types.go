// Package prompts provides the instruction text sent alongside each page image.
//
// Embedded .tmpl files in code are the source of truth for defaults. A prompt
// file named in config replaces the embedded text for a run. Every resolved
// prompt carries a SHA256 hash so journaled calls can be traced to the exact
// instruction text that produced them.
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: survey.page
	Text        string   // The prompt text
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the prompt text a run will actually send.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"-"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Hash       string   `json:"hash" yaml:"hash"`
	IsOverride bool     `json:"is_override" yaml:"is_override"` // true if read from a prompt file
	Source     string   `json:"source" yaml:"source"`           // "embedded" or the override path
}

// SourceEmbedded marks a prompt resolved from the compiled-in default.
const SourceEmbedded = "embedded"
