package optimizer

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"ilopt/analysis"
	"ilopt/cfg"
	"ilopt/ilasm"
	"ilopt/ilerrors"
	"ilopt/ilog"
)

// OptimizationCounts tallies the tri-state result of applying one named
// optimization across an assembly (section 6's per-optimization progress
// line).
type OptimizationCounts struct {
	Name    string
	Updated int
	Skipped int
	Failed  int
}

func (c OptimizationCounts) String() string {
	return fmt.Sprintf("%s: Updated %d Methods, Skipped %d Methods, Failed %d Methods", c.Name, c.Updated, c.Skipped, c.Failed)
}

// Writer persists an optimized assembly. It stands in for the external
// metadata writer (section 1); the driver never touches bytes itself.
type Writer interface {
	Write(path string, asm *ilasm.Assembly) error
}

// Options configures one Run call. Concurrency <= 1 processes methods
// sequentially in traversal order (the default, and the only mode with
// a deterministic per-method ordering guarantee per section 5);
// Concurrency > 1 fans per-method analysis out across a bounded worker
// pool. Either way no per-method structure outlives that method's own
// analysis, so the fan-out is correct by construction: methods only
// share the read-only family table.
type Options struct {
	Concurrency int
	Log         *ilog.Logger
}

// Run applies mode's striplocalsinit optimization to every method
// reachable from asm, mutating method bodies in place, then writes the
// result to outPath through w. Writing is atomic in the sense required
// by section 4.F: if Write fails, any partial file at outPath is
// removed before the error is returned.
//
// A method whose analyzer call returns an error is counted Failed and
// does not stop the traversal (section 5's "errors inside one method's
// analysis do not interrupt the remaining methods"); Run itself only
// returns an error for the write step.
func Run(asm *ilasm.Assembly, mode analysis.Mode, w Writer, outPath string, opts Options) (Counts, OptimizationCounts, error) {
	oc := OptimizationCounts{Name: "striplocalsinit"}
	var mu sync.Mutex

	record := func(m *ilasm.Method, result analysis.Result, err error) {
		mu.Lock()
		switch result {
		case analysis.Updated:
			oc.Updated++
		case analysis.Skipped:
			oc.Skipped++
		case analysis.Failed:
			oc.Failed++
		}
		mu.Unlock()
		if err != nil && opts.Log != nil {
			opts.Log.MethodFailed(asm.Name, "", m.Name, err)
		}
	}

	if opts.Concurrency > 1 {
		var eg errgroup.Group
		eg.SetLimit(opts.Concurrency)
		counts := walkAssembly(asm, func(m *ilasm.Method) {
			eg.Go(func() error {
				result, err := applyMethod(m, mode)
				record(m, result, err)
				return nil
			})
		})
		eg.Wait()
		return finish(asm, w, outPath, counts, oc)
	}

	counts := walkAssembly(asm, func(m *ilasm.Method) {
		result, err := applyMethod(m, mode)
		record(m, result, err)
	})
	return finish(asm, w, outPath, counts, oc)
}

func finish(asm *ilasm.Assembly, w Writer, outPath string, counts Counts, oc OptimizationCounts) (Counts, OptimizationCounts, error) {
	if err := w.Write(outPath, asm); err != nil {
		os.Remove(outPath)
		return counts, oc, ilerrors.Wrap(ilerrors.AssemblyIOError, err, "writing %s", outPath)
	}
	return counts, oc, nil
}

// applyMethod runs the analyzer on one method, treating any build or
// analysis error as Failed for that method — mirroring section 7's
// propagation policy that in-method errors never abort the run.
func applyMethod(m *ilasm.Method, mode analysis.Mode) (analysis.Result, error) {
	if !m.Body.HasBody() {
		return analysis.Skipped, nil
	}
	if !m.Body.InitLocals {
		return analysis.Skipped, nil
	}

	g, err := cfg.Build(m.Body)
	if err != nil {
		return analysis.Failed, err
	}

	result, err := analysis.Analyze(g, mode)
	if err != nil {
		return analysis.Failed, err
	}
	return result, nil
}
