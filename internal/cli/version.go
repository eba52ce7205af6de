package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set via ldflags.
var (
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("classlens version %s\n", Version)
			cmd.Printf("  build date: %s\n", BuildDate)
			cmd.Printf("  git commit: %s\n", GitCommit)
			cmd.Printf("  go version: %s\n", runtime.Version())
		},
	}
}
