package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/classlens/classlens/internal/history"
)

func historyCmd() *cobra.Command {
	var historyDB string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Long: `List analysis runs recorded with "classlens analyze --history",
newest first.

Examples:
  classlens history
  classlens history --limit 5
  classlens history --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := historyPath(historyDB)
			if err != nil {
				return err
			}
			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Recent(limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				cmd.PrintErrln("No recorded runs.")
				return nil
			}
			for _, r := range runs {
				score := "-"
				if !r.Incomplete {
					score = strconv.Itoa(r.Score)
				}
				cmd.PrintErrf("%s  score %3s  findings %2d (critical %d)  %s\n",
					r.Timestamp.Format("2006-01-02 15:04:05"), score, r.Findings, r.Critical, r.IndexPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&historyDB, "history-db", "", "history database path (default: ~/.classlens/history.db)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output runs as JSON")

	return cmd
}
