package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/flowline/internal/config"
	"github.com/agentic-research/flowline/internal/logging"
	"github.com/spf13/cobra"
)

const serviceName = "flowline"

// logFlags are the persistent logging flags shared by every subcommand.
type logFlags struct {
	level string
	dir   string
	json  bool
	quiet bool
}

func newRootCmd() *cobra.Command {
	lf := &logFlags{}
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Flowline: lineage flows from exported lineage edges",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&lf.level, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&lf.dir, "log-dir", "", "Directory for daily JSON log files")
	root.PersistentFlags().BoolVar(&lf.json, "log-json", false, "Log JSON to stderr")
	root.PersistentFlags().BoolVarP(&lf.quiet, "quiet", "q", false, "No log output on stderr")

	root.AddCommand(newRunCmd(lf), newEstimateCmd(lf), newDedupCmd(lf))
	return root
}

// provider builds the logging Provider for cmd. Flags set on the command
// line win over the config file's log section.
func (lf *logFlags) provider(cmd *cobra.Command, fromConfig *config.Log) (*logging.Provider, error) {
	cfg := logging.Config{
		Level:   lf.level,
		Dir:     lf.dir,
		Service: serviceName,
		JSON:    lf.json,
		Quiet:   lf.quiet,
		Writer:  cmd.ErrOrStderr(),
	}
	if fromConfig != nil {
		flags := cmd.Flags()
		if !flags.Changed("log-level") {
			cfg.Level = fromConfig.Level
		}
		if !flags.Changed("log-dir") {
			cfg.Dir = fromConfig.Dir
		}
		if !flags.Changed("log-json") {
			cfg.JSON = fromConfig.JSON
		}
	}
	return logging.New(cfg)
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
