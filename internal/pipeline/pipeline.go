// Package pipeline runs a scanned survey PDF end to end: rasterize the pages,
// read each through a vision model, aggregate answers per survey and write the
// table as CSV.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/surveytab/internal/home"
	"github.com/jackzampolin/surveytab/internal/llmcall"
	"github.com/jackzampolin/surveytab/internal/output"
	"github.com/jackzampolin/surveytab/internal/pdf"
	"github.com/jackzampolin/surveytab/internal/prompts"
	"github.com/jackzampolin/surveytab/internal/providers"
	"github.com/jackzampolin/surveytab/internal/survey"
)

// RasterizeFunc renders PDFs to page images. pdf.Rasterize is the default.
type RasterizeFunc func(ctx context.Context, req pdf.Request) (*pdf.Document, error)

// Options configures one processing run.
type Options struct {
	PDFPaths     []string
	SurveyLength int
	OutputPath   string

	Client      providers.LLMClient
	Model       string
	MaxTokens   int
	Concurrency int
	DPI         int
	Lint        bool
	Prompt      *prompts.ResolvedPrompt

	Home  *home.Dir
	RunID string // Generated when empty

	Rasterize RasterizeFunc // Optional (tests)
	Logger    *slog.Logger
}

// Summary describes a finished run.
type Summary struct {
	RunID      string               `json:"run_id" yaml:"run_id"`
	RunDir     string               `json:"run_dir" yaml:"run_dir"`
	Title      string               `json:"title" yaml:"title"`
	Output     string               `json:"output" yaml:"output"`
	Provider   string               `json:"provider" yaml:"provider"`
	Model      string               `json:"model,omitempty" yaml:"model,omitempty"`
	PromptHash string               `json:"prompt_hash" yaml:"prompt_hash"`
	Pages      int                  `json:"pages" yaml:"pages"`
	Surveys    int                  `json:"surveys" yaml:"surveys"`
	Rows       int                  `json:"rows" yaml:"rows"`
	Columns    []string             `json:"columns" yaml:"columns"`
	EmptyPages int                  `json:"empty_pages" yaml:"empty_pages"`
	Failures   []survey.PageFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	DroppedIDs []string             `json:"dropped_ids,omitempty" yaml:"dropped_ids,omitempty"`
	Usage      Usage                `json:"usage" yaml:"usage"`
	Duration   string               `json:"duration" yaml:"duration"`
}

func (o *Options) validate() error {
	if len(o.PDFPaths) == 0 {
		return errors.New("at least one PDF is required")
	}
	if o.SurveyLength <= 0 {
		return fmt.Errorf("survey length must be positive, got %d", o.SurveyLength)
	}
	if o.OutputPath == "" {
		return errors.New("output path is required")
	}
	if o.Client == nil {
		return errors.New("LLM client is required")
	}
	if o.Prompt == nil {
		return errors.New("prompt is required")
	}
	if o.Home == nil {
		return errors.New("home directory is required")
	}
	return nil
}

// Run processes the PDFs and writes the CSV. Page-level failures are part of
// the summary; an error means the run itself could not complete.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rasterize := opts.Rasterize
	if rasterize == nil {
		rasterize = pdf.Rasterize
	}

	runID := opts.RunID
	if runID == "" {
		runID = home.NewRunID(start)
	}
	if err := opts.Home.EnsureRunDir(runID); err != nil {
		return nil, err
	}
	logger = logger.With("run_id", runID)

	recorder, err := llmcall.NewRecorder(opts.Home.CallsPath(runID), logger)
	if err != nil {
		return nil, err
	}
	defer recorder.Close()

	doc, err := rasterize(ctx, pdf.Request{
		PDFPaths: opts.PDFPaths,
		OutDir:   opts.Home.PagesDir(runID),
		DPI:      opts.DPI,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize PDF: %w", err)
	}
	if doc.PageCount%opts.SurveyLength != 0 {
		logger.Warn("page count is not a multiple of survey length; last survey is short",
			"pages", doc.PageCount, "survey_length", opts.SurveyLength)
	}

	reader, err := NewPageReader(ReaderConfig{
		Client:       opts.Client,
		Images:       doc,
		Prompt:       opts.Prompt,
		Model:        opts.Model,
		MaxTokens:    opts.MaxTokens,
		SurveyLength: opts.SurveyLength,
		RunID:        runID,
		Recorder:     recorder,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	agg, err := survey.NewAggregator(survey.AggregatorConfig{
		Reader:       reader,
		SurveyLength: opts.SurveyLength,
		Concurrency:  opts.Concurrency,
		Lint:         opts.Lint,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	sink, err := output.CreateCSV(opts.OutputPath)
	if err != nil {
		return nil, err
	}

	logger.Info("processing surveys",
		"title", doc.Title,
		"pages", doc.PageCount,
		"survey_length", opts.SurveyLength,
		"provider", opts.Client.Name(),
		"prompt", opts.Prompt.Source)

	result, runErr := agg.Run(ctx, doc.PageCount, sink)
	if closeErr := sink.Close(); runErr == nil && closeErr != nil {
		runErr = fmt.Errorf("failed to close output: %w", closeErr)
	}
	if runErr != nil {
		return nil, runErr
	}

	summary := &Summary{
		RunID:      runID,
		RunDir:     opts.Home.RunDir(runID),
		Title:      doc.Title,
		Output:     opts.OutputPath,
		Provider:   opts.Client.Name(),
		Model:      opts.Model,
		PromptHash: opts.Prompt.Hash,
		Pages:      result.Pages,
		Surveys:    result.Instances,
		Rows:       result.Rows,
		Columns:    result.Schema.IDs(),
		EmptyPages: result.EmptyPages,
		Failures:   result.Failures,
		DroppedIDs: result.DroppedIDs,
		Usage:      reader.Usage(),
		Duration:   time.Since(start).Round(time.Millisecond).String(),
	}

	logger.Info("data written", "output", opts.OutputPath, "rows", summary.Rows, "columns", len(summary.Columns))
	if len(summary.Failures) > 0 {
		logger.Warn("some pages contributed no answers", "failed_pages", len(summary.Failures),
			"calls_journal", opts.Home.CallsPath(runID))
	}
	return summary, nil
}
