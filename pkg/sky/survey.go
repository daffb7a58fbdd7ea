package sky

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"
	"github.com/zegevlier/infi-aoc-2024/pkg/grid"
)

// Options configures a survey.
type Options struct {
	Workers int  // Evaluation workers; <= 1 is sequential
	Trace   bool // Per-instruction debug logging
}

// Report is the outcome of a survey.
type Report struct {
	ProgramHash string
	StartedAt   time.Time

	Calibration  int
	Clouds       int
	LargestCloud int

	// Active is the grid produced by evaluation. The cloud count can be
	// recomputed from it.
	Active *grid.Grid[bool]

	Workers       int
	EvalDuration  time.Duration
	CountDuration time.Duration
}

// Survey evaluates prog over the whole grid and counts the resulting clouds.
func Survey(ctx context.Context, prog *bytecode.Program, opts Options) (*Report, error) {
	ev := Evaluator{Workers: opts.Workers, Trace: opts.Trace}
	report := &Report{
		ProgramHash: prog.HashString(),
		StartedAt:   time.Now(),
		Workers:     ev.workers(),
	}

	start := time.Now()
	eval, err := ev.Evaluate(ctx, prog)
	if err != nil {
		return nil, err
	}
	report.EvalDuration = time.Since(start)
	report.Calibration = eval.Calibration
	report.Active = eval.Active

	start = time.Now()
	visited := grid.New[bool]()
	for _, c := range FindClouds(eval.Active, visited) {
		report.Clouds++
		report.LargestCloud = max(report.LargestCloud, c.Size())
	}
	report.CountDuration = time.Since(start)

	log.Infof("counted %d clouds in %s (largest %d cells)", report.Clouds, report.CountDuration, report.LargestCloud)
	return report, nil
}

// Duration is the total time spent evaluating and counting.
func (r *Report) Duration() time.Duration {
	return r.EvalDuration + r.CountDuration
}

// WriteTo writes the two result lines.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Calibration number: %d\nClouds: %d\n", r.Calibration, r.Clouds)
	return int64(n), err
}
