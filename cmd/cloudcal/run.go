package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"
	"github.com/zegevlier/infi-aoc-2024/pkg/history"
	"github.com/zegevlier/infi-aoc-2024/pkg/sky"
	"github.com/zegevlier/infi-aoc-2024/pkg/snapshot"
)

// programPath returns the listing named on the command line, or the
// configured one.
func (o *options) programPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.cfg.ProgramPath()
}

func runSurvey(cmd *cobra.Command, opts *options, args []string) error {
	path := opts.programPath(args)
	prog, err := bytecode.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	report, err := sky.Survey(cmd.Context(), prog, sky.Options{
		Workers: opts.cfg.Eval.Workers,
		Trace:   opts.cfg.Eval.Trace,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if _, err := report.WriteTo(cmd.OutOrStdout()); err != nil {
		return err
	}

	if out := opts.cfg.SnapshotPath(); out != "" {
		if err := snapshot.Write(out, snapshot.New(prog, report)); err != nil {
			return err
		}
	}

	if opts.cfg.History.Enabled {
		if err := recordRun(opts.cfg.HistoryPath(), report); err != nil {
			return err
		}
	}
	return nil
}

func recordRun(dbPath string, report *sky.Report) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer store.Close()

	prev, err := store.Latest(report.ProgramHash)
	switch {
	case errors.Is(err, history.ErrNotFound):
		// First run of this program.
	case err != nil:
		return fmt.Errorf("history: %w", err)
	case prev.Calibration != report.Calibration || prev.Clouds != report.Clouds:
		log.Warningf("results differ from run %s of the same program (calibration %d, clouds %d)",
			prev.ID, prev.Calibration, prev.Clouds)
	}

	if _, err := store.Record(report); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}
