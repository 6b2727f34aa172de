package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// PageReader returns the raw model response for a 1-based page number.
type PageReader interface {
	ReadPage(ctx context.Context, pageNum int) (string, error)
}

// PageReaderFunc adapts a function to PageReader.
type PageReaderFunc func(ctx context.Context, pageNum int) (string, error)

func (f PageReaderFunc) ReadPage(ctx context.Context, pageNum int) (string, error) {
	return f(ctx, pageNum)
}

// Phase is the aggregator's position in a run.
type Phase int

const (
	PhaseCollectingFirst Phase = iota
	PhaseSchemaFixed
	PhaseCollectingLater
)

func (p Phase) String() string {
	switch p {
	case PhaseCollectingFirst:
		return "collecting_first"
	case PhaseSchemaFixed:
		return "schema_fixed"
	case PhaseCollectingLater:
		return "collecting_later"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	Reader       PageReader
	SurveyLength int // Pages per survey instance, must be positive
	Concurrency  int // Pages of one instance read at once (default: 1)
	Lint         bool
	Logger       *slog.Logger
}

// Aggregator groups pages into survey instances, extracts and merges their
// answers, fixes the schema after the first instance and emits one row per
// instance.
type Aggregator struct {
	reader       PageReader
	surveyLength int
	concurrency  int
	lint         bool
	logger       *slog.Logger

	mu    sync.Mutex
	phase Phase
}

// Result summarizes a completed run.
type Result struct {
	Schema     Schema
	Pages      int
	Instances  int
	Rows       int
	EmptyPages int
	Failures   []PageFailure
	// DroppedIDs are identifiers seen after the first instance that are not
	// schema columns. Their answers do not appear in the output.
	DroppedIDs []QuestionID
}

// NewAggregator validates cfg and returns an Aggregator.
func NewAggregator(cfg AggregatorConfig) (*Aggregator, error) {
	if cfg.Reader == nil {
		return nil, errors.New("page reader is required")
	}
	if cfg.SurveyLength <= 0 {
		return nil, fmt.Errorf("survey length must be positive, got %d", cfg.SurveyLength)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		reader:       cfg.Reader,
		surveyLength: cfg.SurveyLength,
		concurrency:  concurrency,
		lint:         cfg.Lint,
		logger:       logger,
	}, nil
}

// Phase returns the current phase of the most recent run.
func (a *Aggregator) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

func (a *Aggregator) setPhase(p Phase) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
}

// Run processes pages 1..pageCount. Page failures are logged and recorded in
// the result; only context cancellation between instances or a sink error
// stops the run.
func (a *Aggregator) Run(ctx context.Context, pageCount int, sink RowSink) (*Result, error) {
	a.setPhase(PhaseCollectingFirst)

	builder := NewSchemaBuilder()
	result := &Result{Pages: pageCount}
	var columns map[QuestionID]struct{}
	dropped := make(map[QuestionID]struct{})

	freeze := func() error {
		result.Schema = builder.Freeze()
		columns = make(map[QuestionID]struct{}, result.Schema.Len())
		for _, id := range result.Schema.ids {
			columns[id] = struct{}{}
		}
		a.setPhase(PhaseSchemaFixed)
		a.logger.Info("determined question structure",
			"columns", result.Schema.Len(),
			"schema", result.Schema.ids)
		if err := sink.WriteHeader(result.Schema); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		return nil
	}

	for start := 1; start <= pageCount; start += a.surveyLength {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := min(start+a.surveyLength-1, pageCount)
		instance := (start-1)/a.surveyLength + 1
		if instance > 1 {
			a.setPhase(PhaseCollectingLater)
		}

		answers := SurveyAnswerSet{}
		for _, out := range a.readInstance(ctx, instance, start, end) {
			if out.err != nil {
				result.Failures = append(result.Failures, classify(out.page, instance, out.err))
				continue
			}
			if len(out.answers) == 0 {
				result.EmptyPages++
			}
			answers.Merge(out.answers)
			if instance == 1 {
				builder.Observe(out.answers)
			}
		}

		if instance == 1 {
			if err := freeze(); err != nil {
				return result, err
			}
		} else {
			for id := range answers {
				if _, ok := columns[id]; ok {
					continue
				}
				if _, seen := dropped[id]; !seen {
					dropped[id] = struct{}{}
					result.DroppedIDs = append(result.DroppedIDs, id)
					a.logger.Warn("identifier not in schema, dropping",
						"survey", instance, "question_id", id)
				}
			}
		}

		row := Materialize(instance, answers, result.Schema)
		if err := sink.WriteRow(row); err != nil {
			return result, fmt.Errorf("failed to write row %d: %w", instance, err)
		}
		result.Instances++
		result.Rows++

		a.logger.Info("processed survey", "survey", instance, "pages", end-start+1, "answers", len(answers))
	}

	// No pages at all: the table still gets its (empty) header.
	if !builder.Frozen() {
		if err := freeze(); err != nil {
			return result, err
		}
	}

	SortIDs(result.DroppedIDs)
	return result, nil
}

type pageOutcome struct {
	page    int
	answers PageAnswerSet
	err     error
}

// readInstance reads pages start..end and returns their outcomes in page
// order, regardless of the order the reads complete in.
func (a *Aggregator) readInstance(ctx context.Context, instance, start, end int) []pageOutcome {
	outcomes := make([]pageOutcome, end-start+1)

	if a.concurrency == 1 {
		for i := range outcomes {
			outcomes[i] = a.readPage(ctx, instance, start+i)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := range outcomes {
		g.Go(func() error {
			outcomes[i] = a.readPage(ctx, instance, start+i)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (a *Aggregator) readPage(ctx context.Context, instance, page int) pageOutcome {
	log := a.logger.With("survey", instance, "page", page)
	log.Info("processing page")

	text, err := a.reader.ReadPage(ctx, page)
	if err != nil {
		err = &ExternalCallError{Page: page, Err: err}
		log.Error("failed to read page", "error", err)
		return pageOutcome{page: page, err: err}
	}

	span, err := ExtractSpan(text)
	if err != nil {
		log.Error("failed to extract answers", "error", err, "content", text)
		return pageOutcome{page: page, err: err}
	}

	answers, err := ParseAnswerSet(span)
	if err != nil {
		log.Error("failed to parse answers", "error", err, "content", span)
		return pageOutcome{page: page, err: err}
	}

	if a.lint {
		if lintErr := LintSpan(span); lintErr != nil {
			log.Warn("answer set has unexpected shape", "error", lintErr)
		}
	}
	if len(answers) == 0 {
		log.Warn("page yielded no answers")
	} else {
		log.Debug("extracted answers", "count", len(answers))
	}

	return pageOutcome{page: page, answers: answers}
}
