// Package cli implements the ClassLens command-line interface using cobra.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "0.1.0-dev"

// Execute runs the root command.
func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classlens",
		Short: "Static security-configuration auditor for JVM applications",
		Long: `ClassLens audits the compiled classes of a JVM application for
security-configuration patterns and produces a weighted 0-100 score with
severity-tagged findings. It reasons purely over a pre-extracted artifact
index; the target application is never executed.

Quick start:
  classlens analyze app-index.json
  classlens analyze app-index.yaml --rules custom-rules.yaml --fail-under 70
  classlens serve app-index.json --listen 127.0.0.1:9290`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		analyzeCmd(),
		checkCmd(),
		historyCmd(),
		serveCmd(),
		versionCmd(),
	)

	return cmd
}
