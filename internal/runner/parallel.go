package runner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// Job is one independent project run.
type Job struct {
	Name     string
	Snapshot *source.Snapshot
	Registry *provider.Registry
	Options  Options
}

// Result pairs a job's outcome with its error.
type Result struct {
	Name    string
	Outcome *Outcome
	Err     error
}

// RunAll runs independent projects concurrently, at most jobs at a time.
// Every job owns its snapshot; results come back in input order. A failing
// job does not stop the others.
func RunAll(ctx context.Context, jobs []Job, limit int) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(min(limit, len(jobs)))

	for i, job := range jobs {
		g.Go(func() error {
			// индекс i уникален для горутины, мьютекс не нужен
			results[i].Name = job.Name
			opts := job.Options
			if opts.Project == "" {
				opts.Project = job.Name
			}
			if p := opts.Progress; p != nil {
				opts.Progress = func(ev Event) {
					ev.Job = i
					p(ev)
				}
			}
			if err := ctx.Err(); err != nil {
				out := &Outcome{Project: opts.Project, Mode: opts.Mode, Cancelled: true}
				results[i].Outcome = out
				opts.Progress.emit(Event{Project: opts.Project, Kind: EventDone, Outcome: out})
				return nil
			}
			out, err := Run(ctx, job.Snapshot, job.Registry, opts)
			if err != nil {
				err = fmt.Errorf("%s: %w", job.Name, err)
			}
			results[i].Outcome = out
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}
