package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/classlens/classlens/internal/artifact"
	"github.com/classlens/classlens/internal/engine"
	"github.com/classlens/classlens/internal/logging"
	"github.com/classlens/classlens/internal/metrics"
	"github.com/classlens/classlens/internal/notify"
	"github.com/classlens/classlens/internal/watch"
)

const serveShutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var listen string
	var rulesFile string
	var workers int
	var webhookURL string
	var webhookToken string
	var webhookMinSeverity string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "serve <index>",
		Short: "Watch an artifact index and re-analyze on change",
		Long: `Watch an artifact index document, re-running the analysis whenever the
document changes (or on SIGHUP), and expose Prometheus metrics plus a
JSON stats endpoint. Intended for CI runners that regenerate the index
on every build.

Endpoints:
  /metrics  Prometheus text format
  /stats    JSON summary

Examples:
  classlens serve app-index.json
  classlens serve app-index.json --listen 127.0.0.1:9290
  classlens serve app-index.json --webhook https://ci.example.com/hooks/classlens`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng, err := buildEngine(rulesFile, workers)
			if err != nil {
				return err
			}

			idx, err := artifact.Load(args[0])
			if err != nil {
				return err
			}

			log := logging.New(logFormat, cmd.ErrOrStderr())
			m := metrics.New()

			var sink *notify.WebhookSink
			if webhookURL != "" {
				opts := []notify.WebhookOption{}
				if webhookToken != "" {
					opts = append(opts, notify.WithBearerToken(webhookToken))
				}
				if webhookMinSeverity != "" {
					opts = append(opts, notify.WithSeverityFloor(engine.Severity(strings.ToUpper(webhookMinSeverity))))
				}
				sink = notify.NewWebhookSink(webhookURL, opts...)
				defer func() { _ = sink.Close() }()
			}

			runOnce := func(idx *artifact.Index) {
				runID := uuid.NewString()
				log.RunStarted(runID, args[0], len(idx.Types))
				start := time.Now()
				res, err := eng.Run(ctx, idx)
				if err != nil {
					log.WatchError("analyze", err)
					return
				}
				log.RunCompleted(runID, res, time.Since(start))
				m.RecordRun(res, time.Since(start))
				if sink != nil {
					if err := sink.Notify(notify.Notification{
						RunID:     runID,
						Index:     args[0],
						Timestamp: time.Now(),
						Result:    res,
					}); err != nil {
						log.WatchError("notify", err)
					}
				}
			}

			runOnce(idx)

			watcher := watch.New(args[0], func(err error) {
				log.WatchError("reload", err)
			})
			defer watcher.Close()

			mux := http.NewServeMux()
			mux.Handle("/metrics", m.PrometheusHandler())
			mux.HandleFunc("/stats", m.StatsHandler())
			srv := &http.Server{
				Addr:              listen,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 2)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()
			go func() {
				if err := watcher.Start(ctx); err != nil {
					errCh <- err
				}
			}()

			cmd.PrintErrf("classlens serve: watching %s, listening on %s\n", args[0], listen)

			for {
				select {
				case newIdx, ok := <-watcher.Changes():
					if !ok {
						return shutdown(srv)
					}
					runOnce(newIdx)
				case err := <-errCh:
					_ = shutdown(srv)
					return err
				case <-ctx.Done():
					return shutdown(srv)
				}
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:9290", "metrics listen address")
	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "rules overlay file (YAML)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent type pipelines (default: CPU count)")
	cmd.Flags().StringVar(&webhookURL, "webhook", "", "POST run summaries to this URL")
	cmd.Flags().StringVar(&webhookToken, "webhook-token", "", "bearer token for webhook requests")
	cmd.Flags().StringVar(&webhookMinSeverity, "webhook-min-severity", "", "only notify when a finding at or above this severity is present")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "run log format: text or json")

	return cmd
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
