// Package llmcall records every vision-model call of a run for traceability.
// Each call is journaled with its page, prompt hash, raw response and metrics,
// including responses that later fail extraction.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/surveytab/internal/providers"
)

// Call represents a recorded vision-model call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	RunID    string `json:"run_id,omitempty"`
	Page     int    `json:"page"`
	Instance int    `json:"instance"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty"` // SHA256 of the exact instruction text sent

	// Model info
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Attempts int    `json:"attempts,omitempty"`

	// Token usage
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd,omitempty"`

	// Response
	Response string `json:"response"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording a call.
type RecordOptions struct {
	RunID    string
	Page     int
	Instance int

	// Prompt identification (required for traceability)
	PromptKey  string
	PromptHash string
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.TotalTime.Milliseconds()),
		RunID:        opts.RunID,
		Page:         opts.Page,
		Instance:     opts.Instance,
		PromptKey:    opts.PromptKey,
		PromptHash:   opts.PromptHash,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Attempts:     result.Attempts,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		CostUSD:      result.CostUSD,
		Response:     result.Content,
		Success:      result.Success,
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}

	return call
}
