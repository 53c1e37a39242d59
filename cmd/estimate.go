package cmd

import (
	"fmt"

	"github.com/agentic-research/flowline/internal/sizing"
	"github.com/agentic-research/flowline/internal/store"
	"github.com/spf13/cobra"
)

func newEstimateCmd(lf *logFlags) *cobra.Command {
	var dbPath, table string
	cmd := &cobra.Command{
		Use:   "estimate [file]",
		Short: "Estimate a hash table size from a CSV file or a database table",
		Long: `Estimate counts the rows of a delimited file (minus its header) or of
a table in a SQLite database and prints twice that count, the bucket
count that keeps the load factor at or below 0.5.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := lf.provider(cmd, nil)
			if err != nil {
				return err
			}
			defer func() { _ = logs.Close() }()
			logger := logs.Logger("estimate")

			var src sizing.Source
			if len(args) == 1 {
				src.File = args[0]
			}
			if dbPath != "" || table != "" {
				if dbPath == "" || table == "" {
					return fmt.Errorf("--db and --table must be given together")
				}
				st, err := store.Open(dbPath, store.WithLogger(logger))
				if err != nil {
					return err
				}
				defer func() { _ = st.Close() }()
				src.Query = &sizing.CountQuery{DB: st.DB(), Table: table}
			}

			est, err := sizing.Size(cmd.Context(), src)
			if err != nil {
				return err
			}
			if !est.OK {
				return fmt.Errorf("nothing to estimate: give a file or --db and --table")
			}
			logger.Debug("estimated", "rows", est.Rows, "size", est.Size)
			fmt.Fprintf(cmd.OutOrStdout(), "rows=%d size=%d\n", est.Rows, est.Size)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to count rows in")
	cmd.Flags().StringVar(&table, "table", "", "Table to count (with --db)")
	return cmd
}
