package sky

import (
	"context"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"
	"github.com/zegevlier/infi-aoc-2024/pkg/grid"
)

var log = commonlog.GetLogger("cloudcal.sky")

// Evaluation is the output of the first survey phase.
type Evaluation struct {
	// Calibration is the sum of the program's result over every cell.
	Calibration int

	// Active marks the cells whose result was strictly positive.
	Active *grid.Grid[bool]
}

// Evaluator runs a program once per grid coordinate.
type Evaluator struct {
	// Workers is the number of goroutines to split the x axis across.
	// Zero or one evaluates sequentially.
	Workers int

	// Trace enables per-instruction debug logging in every VM.
	Trace bool
}

// Evaluate runs prog at every coordinate and returns the calibration sum and
// the active grid. The first runtime fault aborts the evaluation.
func (e Evaluator) Evaluate(ctx context.Context, prog *bytecode.Program) (*Evaluation, error) {
	start := time.Now()
	active := grid.New[bool]()

	workers := e.workers()
	var (
		sum int
		err error
	)
	if workers == 1 {
		sum, err = e.evaluateSlab(ctx, prog, active, 0, grid.Extent)
	} else {
		sum, err = e.evaluateParallel(ctx, prog, active, workers)
	}
	if err != nil {
		return nil, err
	}

	log.Infof("evaluated %d cells in %s (%d workers)", grid.Cells, time.Since(start), workers)
	return &Evaluation{Calibration: sum, Active: active}, nil
}

// workers clamps the configured worker count to [1, Extent].
func (e Evaluator) workers() int {
	return min(max(e.Workers, 1), grid.Extent)
}

// evaluateParallel gives each worker a disjoint slab of x values and its own
// VM. Partial sums are combined once every worker has finished.
func (e Evaluator) evaluateParallel(ctx context.Context, prog *bytecode.Program, active *grid.Grid[bool], workers int) (int, error) {
	partials := make([]int, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		x0 := w * grid.Extent / workers
		x1 := (w + 1) * grid.Extent / workers
		g.Go(func() error {
			sum, err := e.evaluateSlab(gctx, prog, active, x0, x1)
			if err != nil {
				return err
			}
			partials[w] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, s := range partials {
		total += s
	}
	return total, nil
}

// evaluateSlab evaluates every cell with X in [x0, x1) on a fresh VM.
func (e Evaluator) evaluateSlab(ctx context.Context, prog *bytecode.Program, active *grid.Grid[bool], x0, x1 int) (int, error) {
	vm := bytecode.NewVM()
	vm.Trace = e.Trace

	done := ctx.Done()
	sum := 0
	for pt := range grid.Slab(x0, x1) {
		select {
		case <-done:
			return 0, ctx.Err()
		default:
		}

		result, err := vm.Execute(prog, pt)
		if err != nil {
			// RuntimeError already names the point.
			return 0, err
		}
		sum += int(result)
		active.Set(pt, result > 0)
	}
	return sum, nil
}
