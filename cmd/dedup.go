package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/agentic-research/flowline/internal/dedup"
	"github.com/spf13/cobra"
)

func newDedupCmd(lf *logFlags) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "dedup [paths.json]",
		Short: "Drop repeated paths from a JSON array of paths",
		Long: `Dedup reads a JSON array of paths (each an array of scalars) from the
given file, or stdin when the file is "-" or omitted, and prints the kept
paths as JSON, shortest first. Only exact repeats are dropped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := lf.provider(cmd, nil)
			if err != nil {
				return err
			}
			defer func() { _ = logs.Close() }()

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open paths: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			paths, err := decodePaths(in)
			if err != nil {
				return err
			}

			kept, err := dedup.Run(dedup.New(logs.Logger("dedup")), paths)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if indent {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(kept)
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "Indent the output")
	return cmd
}

// decodePaths reads [[...], ...]. Numbers stay json.Number so 1 and 1.0 are
// distinct elements and print back as written.
func decodePaths(r io.Reader) ([][]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var paths [][]any
	if err := dec.Decode(&paths); err != nil {
		return nil, fmt.Errorf("decode paths: %w", err)
	}
	return paths, nil
}
