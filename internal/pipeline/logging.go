package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackzampolin/surveytab/internal/home"
)

// NewRunLogger creates the run directory and returns a logger that writes text
// records to both w and the run's surveytab.log. Close the returned file when
// the run ends.
func NewRunLogger(h *home.Dir, runID string, w io.Writer, level slog.Leveler) (*slog.Logger, io.Closer, error) {
	if err := h.EnsureRunDir(runID); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(h.LogPath(runID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log: %w", err)
	}
	handler := slog.NewTextHandler(io.MultiWriter(w, f), &slog.HandlerOptions{Level: level})
	return slog.New(handler), f, nil
}
