// cloudcal runs a calibration program over the 30x30x30 sky grid and reports
// the calibration number and the number of clouds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"github.com/tliron/kutil/util"

	"github.com/zegevlier/infi-aoc-2024/manifest"
)

const version = "0.1.0"

var log = commonlog.GetLogger("cloudcal.cli")

// options holds flag values shared by every command.
type options struct {
	dir      string
	verbose  int
	workers  int
	trace    bool
	history  bool
	snapshot string

	// cfg is the manifest with flag overrides applied, set before any
	// command runs.
	cfg *manifest.Manifest
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "cloudcal [program]",
		Short: "Evaluate a calibration program over the sky grid",
		Long: `cloudcal decodes a stack-machine program, runs it once for every cell of
a 30x30x30 grid, and prints the sum of the results (the calibration number)
and the number of face-connected groups of cells with a positive result
(the clouds).

The program defaults to input_program.txt, or [program] path in the
nearest cloudcal.toml.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSurvey(cmd, opts, args)
		},
	}

	root.PersistentFlags().StringVarP(&opts.dir, "dir", "C", "", "Directory to search for cloudcal.toml (default: current)")
	root.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "Increase log verbosity (repeatable)")

	root.Flags().IntVarP(&opts.workers, "workers", "w", 1, "Number of evaluation workers")
	root.Flags().BoolVar(&opts.trace, "trace", false, "Log every executed instruction (very slow, needs -vv)")
	root.Flags().BoolVar(&opts.history, "history", false, "Record the run in the history database")
	root.Flags().StringVar(&opts.snapshot, "snapshot", "", "Write a snapshot of the run to `FILE`")

	root.AddCommand(
		newDisasmCmd(opts),
		newHistoryCmd(opts),
		newInspectCmd(opts),
		newLSPCmd(opts),
	)

	return root
}

// load reads the manifest, applies flag overrides and configures logging.
func (o *options) load(cmd *cobra.Command) error {
	dir := o.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}

	cfg, err := manifest.LoadOrDefault(dir)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Eval.Workers = o.workers
	}
	if flags.Changed("trace") {
		cfg.Eval.Trace = o.trace
	}
	if flags.Changed("history") {
		cfg.History.Enabled = o.history
	}
	if flags.Changed("snapshot") {
		// Relative to the working directory, not the manifest.
		path, err := filepath.Abs(o.snapshot)
		if err != nil {
			return err
		}
		cfg.Snapshot.Output = path
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbosity = o.verbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	log.Debugf("configuration rooted at %s", cfg.Dir)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		util.Exit(1)
	}
	util.Exit(0)
}
