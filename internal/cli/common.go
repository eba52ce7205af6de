package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/classlens/classlens/internal/engine"
	"github.com/classlens/classlens/internal/rules"
)

// buildEngine loads the effective ruleset (defaults, optionally overlaid
// from a file) and constructs the engine. Rule-table problems surface
// here, before any artifact is read.
func buildEngine(rulesFile string, workers int) (*engine.Engine, error) {
	rs, err := loadRules(rulesFile)
	if err != nil {
		return nil, err
	}
	var opts []engine.Option
	if workers > 0 {
		opts = append(opts, engine.WithWorkers(workers))
	}
	return engine.New(rs, opts...)
}

func loadRules(rulesFile string) (*rules.Ruleset, error) {
	if rulesFile == "" {
		return rules.Defaults(), nil
	}
	return rules.Load(rulesFile)
}

// historyPath resolves the history database location; an empty override
// falls back to ~/.classlens/history.db, creating the directory.
func historyPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".classlens")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}
