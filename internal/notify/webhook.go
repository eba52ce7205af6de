// Package notify delivers completed analysis summaries to an external
// HTTP endpoint, for CI integrations that react to score changes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/classlens/classlens/internal/engine"
)

// Default values for WebhookSink configuration.
const (
	DefaultQueueSize      = 16
	DefaultWebhookTimeout = 5 * time.Second
	drainTimeout          = 10 * time.Second
)

// ErrQueueFull is returned when the notification queue is at capacity.
var ErrQueueFull = errors.New("notify: webhook queue full, notification dropped")

// Notification is one completed-run summary queued for delivery.
type Notification struct {
	RunID     string
	Index     string
	Timestamp time.Time
	Result    *engine.Result
}

// webhookPayload is the JSON structure sent to the webhook endpoint.
type webhookPayload struct {
	RunID       string           `json:"run_id"`
	Index       string           `json:"index"`
	Timestamp   string           `json:"timestamp"`
	Score       int              `json:"score"`
	Incomplete  bool             `json:"incomplete"`
	Findings    []engine.Finding `json:"findings,omitempty"`
	Diagnostics int              `json:"diagnostics"`
}

// WebhookSink POSTs run summaries as JSON to an HTTP endpoint.
// Notifications are queued and sent asynchronously by a single background
// goroutine.
type WebhookSink struct {
	url       string
	token     string          // optional bearer token
	floor     engine.Severity // optional severity floor
	client    *http.Client
	queue     chan Notification
	done      chan struct{}
	closeWG   sync.WaitGroup
	closeOnce sync.Once
}

// WebhookOption configures a WebhookSink.
type WebhookOption func(*WebhookSink)

// WithQueueSize sets the buffered channel capacity for pending notifications.
func WithQueueSize(n int) WebhookOption {
	return func(w *WebhookSink) {
		if n > 0 {
			w.queue = make(chan Notification, n)
		}
	}
}

// WithTimeout sets the HTTP client timeout for each POST.
func WithTimeout(d time.Duration) WebhookOption {
	return func(w *WebhookSink) {
		if d > 0 {
			w.client.Timeout = d
		}
	}
}

// WithBearerToken sets the Authorization: Bearer header value.
func WithBearerToken(tok string) WebhookOption {
	return func(w *WebhookSink) {
		w.token = tok
	}
}

// WithSeverityFloor drops notifications whose runs carry no finding at or
// above the given severity. Incomplete runs are always delivered.
func WithSeverityFloor(sev engine.Severity) WebhookOption {
	return func(w *WebhookSink) {
		w.floor = sev
	}
}

// NewWebhookSink creates a sink that POSTs to the given URL. The
// background goroutine starts immediately and runs until Close.
func NewWebhookSink(url string, opts ...WebhookOption) *WebhookSink {
	w := &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: DefaultWebhookTimeout},
		queue:  make(chan Notification, DefaultQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closeWG.Add(1)
	go w.run()

	return w
}

// Notify enqueues a run summary for async delivery. Returns ErrQueueFull
// when the queue is at capacity, or an error if the sink is closed.
func (w *WebhookSink) Notify(n Notification) error {
	if !w.qualifies(n) {
		return nil
	}

	select {
	case <-w.done:
		return errors.New("notify: webhook sink closed")
	default:
	}

	select {
	case w.queue <- n:
		return nil
	case <-w.done:
		return errors.New("notify: webhook sink closed")
	default:
		return ErrQueueFull
	}
}

// Close drains remaining notifications and stops the background
// goroutine. Safe to call multiple times.
func (w *WebhookSink) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	w.closeWG.Wait()
	return nil
}

func (w *WebhookSink) run() {
	defer w.closeWG.Done()

	for {
		select {
		case n := <-w.queue:
			w.send(n)
		case <-w.done:
			w.drain()
			return
		}
	}
}

// drain sends remaining queued notifications with a deadline.
func (w *WebhookSink) drain() {
	deadline := time.After(drainTimeout)
	for {
		select {
		case n := <-w.queue:
			w.send(n)
		case <-deadline:
			return
		default:
			return
		}
	}
}

var severityRank = map[engine.Severity]int{
	engine.SeverityLow:      1,
	engine.SeverityMedium:   2,
	engine.SeverityHigh:     3,
	engine.SeverityCritical: 4,
}

// qualifies applies the severity floor. Incomplete runs always qualify;
// they signal an operational problem regardless of findings.
func (w *WebhookSink) qualifies(n Notification) bool {
	if w.floor == "" || n.Result.Analysis.Incomplete {
		return true
	}
	for _, f := range n.Result.Findings {
		if severityRank[f.Severity] >= severityRank[w.floor] {
			return true
		}
	}
	return false
}

// send POSTs a single summary as JSON to the webhook URL.
func (w *WebhookSink) send(n Notification) {
	payload := webhookPayload{
		RunID:       n.RunID,
		Index:       n.Index,
		Timestamp:   n.Timestamp.UTC().Format(time.RFC3339Nano),
		Score:       n.Result.Score,
		Incomplete:  n.Result.Analysis.Incomplete,
		Findings:    n.Result.Findings,
		Diagnostics: len(n.Result.Diagnostics),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notify: webhook marshal error: %v\n", err)
		return
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "notify: webhook request error: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notify: webhook post error: %v\n", err)
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		fmt.Fprintf(os.Stderr, "notify: webhook returned status %d\n", resp.StatusCode)
	}
}
