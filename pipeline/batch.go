package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasm-repair/errors"
)

// Job is one input/output pair for RunAll.
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of one Job.
type Result struct {
	Report *Report
	Err    error
	Job    Job
}

// RunAll runs independent jobs with at most parallel runs in flight.
// Every job runs to completion regardless of the others; the returned error
// combines all job failures. Jobs sharing an input or output path are
// rejected before anything runs.
func (d *Driver) RunAll(ctx context.Context, jobs []Job, parallel int) ([]Result, error) {
	if err := checkDistinct(jobs); err != nil {
		return nil, err
	}
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(max(1, min(parallel, len(jobs))))

	for i, job := range jobs {
		i, job := i, job // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			report, err := d.Run(ctx, job.Input, job.Output)
			results[i] = Result{Job: job, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var combined error
	for _, r := range results {
		if r.Err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", r.Job.Input, r.Err))
		}
	}
	return results, combined
}

func checkDistinct(jobs []Job) error {
	inputs := make(map[string]bool, len(jobs))
	outputs := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		in, out := filepath.Clean(j.Input), filepath.Clean(j.Output)
		if inputs[in] {
			return errors.InvalidInput(errors.PhaseLoad, j.Input, "input listed more than once")
		}
		if outputs[out] {
			return errors.InvalidInput(errors.PhaseLoad, j.Output, "output listed more than once")
		}
		inputs[in] = true
		outputs[out] = true
	}
	return nil
}
