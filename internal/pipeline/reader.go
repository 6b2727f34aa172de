package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jackzampolin/surveytab/internal/llmcall"
	"github.com/jackzampolin/surveytab/internal/prompts"
	"github.com/jackzampolin/surveytab/internal/providers"
	"github.com/jackzampolin/surveytab/internal/survey"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned no text")

// ImageSource supplies the rendered image for a page. *pdf.Document implements it.
type ImageSource interface {
	ReadPage(pageNum int) ([]byte, error)
}

// ReaderConfig configures a PageReader.
type ReaderConfig struct {
	Client       providers.LLMClient
	Images       ImageSource
	Prompt       *prompts.ResolvedPrompt
	Model        string // Overrides the client's default model when set
	MaxTokens    int
	SurveyLength int // Used to label journal records with their survey
	RunID        string
	Recorder     *llmcall.Recorder // Optional
	Logger       *slog.Logger
}

// Usage totals the calls a PageReader has made.
type Usage struct {
	Calls            int     `json:"calls" yaml:"calls"`
	FailedCalls      int     `json:"failed_calls" yaml:"failed_calls"`
	PromptTokens     int     `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens" yaml:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd" yaml:"cost_usd"`
}

// PageReader sends one page image plus the instruction prompt to a vision
// model and returns the raw response text. It implements survey.PageReader.
type PageReader struct {
	client       providers.LLMClient
	images       ImageSource
	prompt       *prompts.ResolvedPrompt
	model        string
	maxTokens    int
	surveyLength int
	runID        string
	recorder     *llmcall.Recorder
	logger       *slog.Logger

	mu    sync.Mutex
	usage Usage
}

// NewPageReader validates cfg and returns a PageReader.
func NewPageReader(cfg ReaderConfig) (*PageReader, error) {
	if cfg.Client == nil {
		return nil, errors.New("LLM client is required")
	}
	if cfg.Images == nil {
		return nil, errors.New("image source is required")
	}
	if cfg.Prompt == nil || cfg.Prompt.Text == "" {
		return nil, errors.New("prompt is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PageReader{
		client:       cfg.Client,
		images:       cfg.Images,
		prompt:       cfg.Prompt,
		model:        cfg.Model,
		maxTokens:    maxTokens,
		surveyLength: cfg.SurveyLength,
		runID:        cfg.RunID,
		recorder:     cfg.Recorder,
		logger:       logger,
	}, nil
}

// ReadPage implements survey.PageReader.
func (r *PageReader) ReadPage(ctx context.Context, pageNum int) (string, error) {
	img, err := r.images.ReadPage(pageNum)
	if err != nil {
		return "", err
	}

	result, err := r.client.Chat(ctx, &providers.ChatRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		RequestID: uuid.New().String(),
		Messages: []providers.Message{
			{Role: "user", Content: r.prompt.Text, Images: [][]byte{img}},
		},
	})

	r.recorder.Record(result, llmcall.RecordOptions{
		RunID:      r.runID,
		Page:       pageNum,
		Instance:   r.instanceOf(pageNum),
		PromptKey:  r.prompt.Key,
		PromptHash: r.prompt.Hash,
	})
	r.tally(result, err)

	if err != nil {
		return "", err
	}
	if result == nil || strings.TrimSpace(result.Content) == "" {
		return "", ErrEmptyResponse
	}

	r.logger.Debug("page response",
		"page", pageNum,
		"model", result.ModelUsed,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
		"content", result.Content)
	return result.Content, nil
}

func (r *PageReader) instanceOf(pageNum int) int {
	if r.surveyLength <= 0 {
		return 0
	}
	return (pageNum-1)/r.surveyLength + 1
}

func (r *PageReader) tally(result *providers.ChatResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage.Calls++
	if err != nil {
		r.usage.FailedCalls++
	}
	if result != nil {
		r.usage.PromptTokens += result.PromptTokens
		r.usage.CompletionTokens += result.CompletionTokens
		r.usage.CostUSD += result.CostUSD
	}
}

// Usage returns the running call totals.
func (r *PageReader) Usage() Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage
}

var _ survey.PageReader = (*PageReader)(nil)
