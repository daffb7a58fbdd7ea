package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"
	"github.com/zegevlier/infi-aoc-2024/pkg/history"
	"github.com/zegevlier/infi-aoc-2024/pkg/snapshot"
	"github.com/zegevlier/infi-aoc-2024/server"
)

func newDisasmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm [program]",
		Short: "Print an annotated listing of a program",
		Long: `Decodes the program and prints each instruction with its program counter,
the target of every jmpos, and any static warnings (jumps that leave the
program, a final instruction that is not ret).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.programPath(args)
			prog, err := bytecode.DecodeFile(path)
			if err != nil {
				return fmt.Errorf("loading program: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), prog.DisassembleWithName(filepath.Base(path)))
			return err
		},
	}
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := opts.cfg.HistoryPath()
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}

			store, err := history.Open(path)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tPROGRAM\tCALIBRATION\tCLOUDS\tLARGEST\tWORKERS\tDURATION\tID")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%.12s\t%d\t%d\t%d\t%d\t%s\t%s\n",
					r.StartedAt.Local().Format(time.DateTime), r.ProgramHash,
					r.Calibration, r.Clouds, r.LargestCloud, r.Workers, r.Duration, r.ID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SNAPSHOT",
		Short: "Show a stored snapshot and recount its clouds",
		Long: `Reads a snapshot written with --snapshot, prints the stored results, and
recounts the clouds from the stored active grid. A recount that disagrees
with the stored count, or a listing that no longer matches its hash, is an
error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := snapshot.Read(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			active, err := s.ActiveGrid()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Program:            %x\n", s.ProgramHash)
			fmt.Fprintf(out, "Calibration number: %d\n", s.Calibration)
			fmt.Fprintf(out, "Clouds:             %d\n", s.Clouds)
			fmt.Fprintf(out, "Largest cloud:      %d\n", s.LargestCloud)
			fmt.Fprintf(out, "Active cells:       %d\n", active.Count(func(v bool) bool { return v }))

			if err := s.Verify(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Recount:            ok")
			return nil
		},
	}
}

func newLSPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server for program listings on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Notice("starting language server on stdio")
			return server.NewLSP(version).Run()
		},
	}
}
