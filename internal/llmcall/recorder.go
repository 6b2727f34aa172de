package llmcall

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/jackzampolin/surveytab/internal/providers"
)

// Recorder appends calls as JSON lines to a journal file.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	mu     sync.Mutex
	f      *os.File
	enc    *json.Encoder
	logger *slog.Logger
	count  int
}

// NewRecorder opens (or creates) the journal at path for appending.
func NewRecorder(path string, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open call journal: %w", err)
	}
	return &Recorder{f: f, enc: json.NewEncoder(f), logger: logger}, nil
}

// Record journals a chat result.
// Journal write failures are logged, never returned: losing a diagnostic
// record must not fail the page.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	if r == nil {
		return
	}
	r.RecordCall(FromChatResult(result, opts))
}

// RecordCall journals an already-constructed Call.
func (r *Recorder) RecordCall(call *Call) {
	if r == nil || call == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return
	}
	if err := r.enc.Encode(call); err != nil {
		r.logger.Warn("failed to journal call", "page", call.Page, "error", err)
		return
	}
	r.count++
}

// Count returns the number of calls journaled by this recorder.
func (r *Recorder) Count() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close closes the journal file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// Filter narrows which journaled calls ReadCalls returns.
type Filter struct {
	Page       int  // 0 = any page
	FailedOnly bool // only unsuccessful calls
	Limit      int  // 0 = no limit
}

// ReadCalls loads journaled calls from path in the order they were written.
func ReadCalls(path string, filter Filter) ([]Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open call journal: %w", err)
	}
	defer f.Close()

	var calls []Call
	dec := json.NewDecoder(f)
	for {
		var c Call
		if err := dec.Decode(&c); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode call journal: %w", err)
		}
		if filter.Page > 0 && c.Page != filter.Page {
			continue
		}
		if filter.FailedOnly && c.Success {
			continue
		}
		calls = append(calls, c)
		if filter.Limit > 0 && len(calls) >= filter.Limit {
			break
		}
	}
	return calls, nil
}
