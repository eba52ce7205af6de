// Package logging provides structured JSON run logging for ClassLens.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/classlens/classlens/internal/engine"
)

// Logger writes structured run events using zerolog.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger writing to w. Format "text" uses the console
// writer; anything else emits JSON lines.
func New(format string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).With().
		Timestamp().
		Str("component", "classlens").
		Logger()
	return &Logger{zl: zl}
}

// NewNop returns a logger that discards all events.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// RunStarted logs the start of an analysis run.
func (l *Logger) RunStarted(runID, indexPath string, typeCount int) {
	l.zl.Info().
		Str("event", "run_started").
		Str("run_id", runID).
		Str("index", indexPath).
		Int("types", typeCount).
		Msg("analysis started")
}

// RunCompleted logs a finished run with its score and finding count.
func (l *Logger) RunCompleted(runID string, res *engine.Result, duration time.Duration) {
	ev := l.zl.Info()
	if res.Analysis.Incomplete {
		ev = l.zl.Warn()
	}
	ev.Str("event", "run_completed").
		Str("run_id", runID).
		Bool("incomplete", res.Analysis.Incomplete).
		Int("score", res.Score).
		Int("findings", len(res.Findings)).
		Int("configs", len(res.Analysis.Configs)).
		Int("diagnostics", len(res.Diagnostics)).
		Dur("duration_ms", duration).
		Msg("analysis completed")
}

// Diagnostic logs one recoverable structural gap from a run.
func (l *Logger) Diagnostic(runID string, d engine.Diagnostic) {
	l.zl.Warn().
		Str("event", "diagnostic").
		Str("run_id", runID).
		Str("class", d.Class).
		Str("method", d.Method).
		Str("detail", d.Detail).
		Msg("uninspectable configuration")
}

// WatchError logs a non-fatal watch-mode failure (reload, re-analysis).
func (l *Logger) WatchError(what string, err error) {
	l.zl.Error().
		Str("event", "watch_error").
		Str("stage", what).
		Err(err).
		Msg("watch error")
}
