// Package engine implements the ClassLens detection and scoring core: it
// classifies which types of an artifact index constitute security
// configuration, inspects the call sites inside their configuration
// methods to infer enabled features, aggregates the inferences into a
// structured analysis, and converts the flattened counts into a 0-100
// score with severity-tagged findings.
//
// The engine reasons purely over static structure. Indirection,
// reflection, and composition it cannot see cause false negatives, and
// superficially matching call sites cause false positives; results
// distinguish "confirmed absent" from "uninspectable" rather than claim
// certainty.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/classlens/classlens/internal/artifact"
	"github.com/classlens/classlens/internal/rules"
)

// ErrNilIndex is returned by Run when no artifact index is supplied.
var ErrNilIndex = errors.New("engine: nil artifact index")

// Engine is an immutable analysis pipeline bound to one validated
// ruleset. It holds no per-run state; Run may be called concurrently.
type Engine struct {
	rules   *rules.Ruleset
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of concurrent type pipelines. Values below
// one fall back to the default.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// New validates the ruleset and builds an engine. A nil ruleset uses the
// built-in defaults. Rule-table problems are caller mistakes and fail
// here, before any artifact is touched.
func New(rs *rules.Ruleset, opts ...Option) (*Engine, error) {
	if rs == nil {
		rs = rules.Defaults()
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := &Engine{rules: rs, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result bundles everything one run produces. When the analysis is
// incomplete (canceled run) the report, score, and findings are left
// empty: a partial analysis is reported as partial, never scored.
type Result struct {
	Analysis    *Analysis    `json:"analysis"`
	Report      Report       `json:"report,omitempty"`
	Score       int          `json:"score"`
	Findings    []Finding    `json:"findings,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Run analyzes the index and, for complete runs, derives the report and
// score. Structural gaps in individual types degrade precision for those
// types only and surface as diagnostics; they never abort the run.
func (e *Engine) Run(ctx context.Context, idx *artifact.Index) (*Result, error) {
	if idx == nil {
		return nil, ErrNilIndex
	}

	diags := &Collector{}
	analysis := e.analyze(ctx, idx, diags)

	res := &Result{
		Analysis:    analysis,
		Diagnostics: diags.Items(),
	}
	if !analysis.Incomplete {
		res.Report = deriveReport(analysis)
		res.Score, res.Findings = ScoreReport(res.Report, e.rules.Weights)
	}
	return res, nil
}

// Rules returns the engine's ruleset. Callers must treat it as read-only.
func (e *Engine) Rules() *rules.Ruleset {
	return e.rules
}
