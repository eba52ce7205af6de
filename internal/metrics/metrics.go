// Package metrics provides Prometheus instrumentation and a JSON stats
// endpoint for ClassLens watch mode.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/classlens/classlens/internal/engine"
)

// Metrics collects Prometheus counters and histograms for analysis runs.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	findingsTotal  *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastScore      prometheus.Gauge
	classifiedSize prometheus.Gauge

	mu             sync.Mutex
	startTime      time.Time
	runCount       int64
	lastScoreVal   int
	lastRunTime    time.Time
	lastIncomplete bool
}

// New creates a Metrics instance with its own Prometheus registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classlens",
		Name:      "runs_total",
		Help:      "Total analysis runs by result.",
	}, []string{"result"})

	findingsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classlens",
		Name:      "findings_total",
		Help:      "Total findings produced, by severity.",
	}, []string{"severity"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "classlens",
		Name:      "run_duration_seconds",
		Help:      "Analysis run duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	lastScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "classlens",
		Name:      "last_score",
		Help:      "Score of the most recent complete analysis run.",
	})

	classifiedSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "classlens",
		Name:      "classified_types",
		Help:      "Number of security-configuration types in the last run.",
	})

	reg.MustRegister(runsTotal, findingsTotal, runDuration, lastScore, classifiedSize)

	return &Metrics{
		registry:       reg,
		runsTotal:      runsTotal,
		findingsTotal:  findingsTotal,
		runDuration:    runDuration,
		lastScore:      lastScore,
		classifiedSize: classifiedSize,
		startTime:      time.Now(),
	}
}

// RecordRun records one finished analysis run.
func (m *Metrics) RecordRun(res *engine.Result, duration time.Duration) {
	result := "complete"
	if res.Analysis.Incomplete {
		result = "incomplete"
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.Observe(duration.Seconds())
	m.classifiedSize.Set(float64(len(res.Analysis.Configs)))

	for _, f := range res.Findings {
		m.findingsTotal.WithLabelValues(string(f.Severity)).Inc()
	}

	m.mu.Lock()
	m.runCount++
	m.lastRunTime = time.Now()
	m.lastIncomplete = res.Analysis.Incomplete
	if !res.Analysis.Incomplete {
		m.lastScoreVal = res.Score
		m.lastScore.Set(float64(res.Score))
	}
	m.mu.Unlock()
}

// PrometheusHandler returns an HTTP handler serving /metrics in
// Prometheus text format.
func (m *Metrics) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StatsHandler returns an HTTP handler serving a JSON stats summary.
func (m *Metrics) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		m.mu.Lock()
		stats := statsResponse{
			UptimeSeconds:  time.Since(m.startTime).Seconds(),
			Runs:           m.runCount,
			LastScore:      m.lastScoreVal,
			LastIncomplete: m.lastIncomplete,
		}
		if !m.lastRunTime.IsZero() {
			stats.LastRun = m.lastRunTime.UTC().Format(time.RFC3339)
		}
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	}
}

type statsResponse struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Runs           int64   `json:"runs"`
	LastScore      int     `json:"last_score"`
	LastRun        string  `json:"last_run,omitempty"`
	LastIncomplete bool    `json:"last_incomplete"`
}
