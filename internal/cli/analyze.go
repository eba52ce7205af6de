package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/classlens/classlens/internal/artifact"
	"github.com/classlens/classlens/internal/engine"
	"github.com/classlens/classlens/internal/history"
	"github.com/classlens/classlens/internal/logging"
	"github.com/classlens/classlens/internal/sarifout"
)

// ErrScoreBelowThreshold is returned when --fail-under gates the run.
var ErrScoreBelowThreshold = errors.New("score below threshold")

// ErrIncompleteRun is returned when the analysis was canceled before
// completing; an incomplete analysis carries no score.
var ErrIncompleteRun = errors.New("analysis incomplete")

func analyzeCmd() *cobra.Command {
	var rulesFile string
	var jsonOutput bool
	var sarifFile string
	var failUnder int
	var workers int
	var recordHistory bool
	var historyDB string
	var logFormat string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "analyze <index>",
		Short: "Analyze an artifact index and score its security configuration",
		Long: `Analyze a pre-extracted artifact index document (JSON or YAML) and print
the security-configuration score and findings.

Examples:
  classlens analyze app-index.json
  classlens analyze app-index.yaml --rules custom-rules.yaml
  classlens analyze app-index.json --json
  classlens analyze app-index.json --sarif findings.sarif
  classlens analyze app-index.json --fail-under 70
  classlens analyze app-index.json --history`,
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

			log := logging.NewNop()
			if verbose {
				log = logging.New(logFormat, cmd.ErrOrStderr())
			}
			runID := uuid.NewString()
			log.RunStarted(runID, args[0], len(idx.Types))

			start := time.Now()
			res, err := eng.Run(ctx, idx)
			if err != nil {
				return err
			}
			log.RunCompleted(runID, res, time.Since(start))
			for _, d := range res.Diagnostics {
				log.Diagnostic(runID, d)
			}

			if recordHistory {
				if err := recordRun(historyDB, runID, args[0], res); err != nil {
					return err
				}
			}

			if sarifFile != "" && !res.Analysis.Incomplete {
				if err := writeSarif(sarifFile, res, args[0]); err != nil {
					return err
				}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printResult(cmd, args[0], res)
			}

			if res.Analysis.Incomplete {
				return ErrIncompleteRun
			}
			if failUnder > 0 && res.Score < failUnder {
				return fmt.Errorf("%w: %d < %d", ErrScoreBelowThreshold, res.Score, failUnder)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "rules overlay file (YAML)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output the full result as JSON")
	cmd.Flags().StringVar(&sarifFile, "sarif", "", "write findings as SARIF to file")
	cmd.Flags().IntVar(&failUnder, "fail-under", 0, "exit non-zero when the score is below this value")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent type pipelines (default: CPU count)")
	cmd.Flags().BoolVar(&recordHistory, "history", false, "record this run in the local history database")
	cmd.Flags().StringVar(&historyDB, "history-db", "", "history database path (default: ~/.classlens/history.db)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "run log format: text or json")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log run progress and diagnostics to stderr")

	return cmd
}

func writeSarif(path string, res *engine.Result, indexPath string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing SARIF report: %w", err)
	}
	defer func() { _ = f.Close() }()
	return sarifout.Write(f, res, indexPath)
}

func recordRun(dbPath, runID, indexPath string, res *engine.Result) error {
	path, err := historyPath(dbPath)
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Record(runID, indexPath, res, time.Now())
}

func printResult(cmd *cobra.Command, indexPath string, res *engine.Result) {
	cmd.PrintErrln("ClassLens Security Analysis")
	cmd.PrintErrln("===========================")
	cmd.PrintErrln()
	cmd.PrintErrf("Index:             %s\n", indexPath)
	cmd.PrintErrf("Config classes:    %d\n", len(res.Analysis.Configs))
	cmd.PrintErrf("Auth providers:    %d\n", len(res.Analysis.AuthProviders))
	if res.Analysis.Incomplete {
		cmd.PrintErrln()
		cmd.PrintErrln("Run canceled before completion: partial analysis, no score.")
		return
	}
	cmd.PrintErrf("Score:             %d/100\n", res.Score)
	cmd.PrintErrln()

	for i := range res.Analysis.Configs {
		ci := &res.Analysis.Configs[i]
		cmd.PrintErrf("%s\n", ci.ClassName)
		if !ci.Inspected {
			cmd.PrintErrln("  (configuration method not inspectable; features unknown)")
			continue
		}
		cmd.PrintErrf("  authorization rules: %s\n", yesNo(ci.HasAuthorizationRules))
		cmd.PrintErrf("  form login:          %s\n", yesNo(ci.FormLoginEnabled))
		cmd.PrintErrf("  basic auth:          %s\n", yesNo(ci.BasicAuthEnabled))
		cmd.PrintErrf("  oauth2 login:        %s\n", yesNo(ci.OAuth2LoginEnabled))
		cmd.PrintErrf("  jwt:                 %s\n", yesNo(ci.JWTEnabled))
		cmd.PrintErrf("  session management:  %s\n", yesNo(ci.HasSessionManagement))
		cmd.PrintErrf("  cors:                %s\n", yesNo(ci.CORSEnabled))
		cmd.PrintErrf("  csrf:                %s\n", yesNo(ci.CSRFConfigured))
		cmd.PrintErrf("  security headers:    %s\n", yesNo(ci.HeaderSecurityConfigured))
	}

	if len(res.Findings) > 0 {
		cmd.PrintErrln()
		cmd.PrintErrln("Findings:")
		for _, f := range res.Findings {
			cmd.PrintErrf("  [%s] %s (count %d, impact %+d)\n", f.Severity, f.Description, f.Count, f.Impact)
			if f.Remediation != "" {
				cmd.PrintErrf("           fix: %s\n", f.Remediation)
			}
		}
	}

	if len(res.Analysis.AuthRules) > 0 {
		cmd.PrintErrln()
		cmd.PrintErrln("Authorization rules:")
		members := make([]string, 0, len(res.Analysis.AuthRules))
		for member := range res.Analysis.AuthRules {
			members = append(members, member)
		}
		sort.Strings(members)
		for _, member := range members {
			rule := res.Analysis.AuthRules[member]
			cmd.PrintErrf("  %s (%s): %d call site(s)\n", rule.Member, rule.Kind, rule.Count)
		}
	}

	if len(res.Diagnostics) > 0 {
		cmd.PrintErrln()
		cmd.PrintErrf("Diagnostics (%d):\n", len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			if d.Method != "" {
				cmd.PrintErrf("  %s.%s: %s\n", d.Class, d.Method, d.Detail)
			} else {
				cmd.PrintErrf("  %s: %s\n", d.Class, d.Detail)
			}
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
