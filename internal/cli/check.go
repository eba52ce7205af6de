package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/classlens/classlens/internal/rules"
)

func checkCmd() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a rules overlay and print the effective tables",
		Long: `Validate a ClassLens rules overlay file and print a summary of the
effective rule tables.

Examples:
  classlens check
  classlens check --rules custom-rules.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rs *rules.Ruleset
			if rulesFile != "" {
				var err error
				rs, err = rules.Load(rulesFile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Rules validation FAILED: %v\n", err)
					return err
				}
				fmt.Println("Rules validation: OK")
			} else {
				rs = rules.Defaults()
				fmt.Println("Using default rules (no --rules specified)")
			}

			fmt.Printf("  Classifier annotations: %d\n", len(rs.Classifier.Annotations))
			fmt.Printf("  Classifier superclasses: %d\n", len(rs.Classifier.Superclasses))
			fmt.Printf("  Classifier interfaces:  %d\n", len(rs.Classifier.Interfaces))
			fmt.Printf("  Locator signatures:     %d\n", len(rs.Locator))
			fmt.Printf("  Feature members:        %d\n", len(rs.Features.Members))
			fmt.Printf("  Authorization members:  %d\n", len(rs.Authorization.Members))
			fmt.Printf("  Weight categories:      %d\n", len(rs.Weights))
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "rules overlay file to validate")

	return cmd
}
