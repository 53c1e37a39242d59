package cmd

import (
	"fmt"

	"github.com/agentic-research/flowline/internal/config"
	"github.com/agentic-research/flowline/internal/pipeline"
	"github.com/spf13/cobra"
)

func newRunCmd(lf *logFlags) *cobra.Command {
	var (
		configPath string
		maxPaths   int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load sources, build lineage flows and write them to the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logs, err := lf.provider(cmd, &cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logs.Close() }()

			runner := pipeline.New(cfg, logs.Logger("pipeline"))
			runner.MaxPaths = maxPaths
			res, err := runner.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run %s: %w", configPath, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s\n", res.RunID)
			fmt.Fprintf(out, "  rows:   %d\n", res.Rows)
			fmt.Fprintf(out, "  nodes:  %d (index size %d)\n", res.Nodes, res.TableSize)
			fmt.Fprintf(out, "  edges:  %d\n", res.Edges)
			fmt.Fprintf(out, "  flows:  %d of %d paths\n", res.Flows, res.Paths)
			fmt.Fprintf(out, "  stored: %s, %s in %s\n", cfg.Store.RawTable, cfg.Store.FlowTable, cfg.Store.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "flowline.yaml", "Path to the pipeline config")
	cmd.Flags().IntVar(&maxPaths, "max-paths", 0, "Fail when the graph has more paths than this (0 = no limit)")
	return cmd
}
