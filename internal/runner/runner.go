// Package runner drives one remediation run per project: collect
// diagnostics, select a fix per category, apply the fixes and finally
// commit or verify the result.
package runner

import (
	"context"
	"errors"
	"fmt"

	"bulkfix/internal/collect"
	"bulkfix/internal/compile"
	"bulkfix/internal/dcache"
	"bulkfix/internal/diag"
	"bulkfix/internal/fix"
	"bulkfix/internal/observ"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
	"bulkfix/internal/trace"
	"bulkfix/internal/writeback"
)

// ErrInvalidInput is returned for a nil snapshot or registry.
var ErrInvalidInput = errors.New("invalid input")

// Options configure a run.
type Options struct {
	Mode Mode
	// Filter narrows the run to the listed categories; nil means all.
	Filter diag.CodeSet
	// Prefer is the preferred action title prefix (case-insensitive).
	Prefer   string
	Compiler compile.Compiler
	// Writer persists artifacts in commit mode. nil writes to disk relative
	// to the snapshot's base directory.
	Writer   writeback.Writer
	Cache    *dcache.Cache
	Warn     provider.WarnFunc
	Progress ProgressFunc
	// NoBulk disables bulk application.
	NoBulk bool
	// Project names the run in events and output.
	Project string
}

// Run executes the pipeline on snap. Provider and compile failures never
// fail the run; only invalid input and write failures are returned. On
// cancellation the outcome accumulated so far is returned with Cancelled
// set and nothing is written.
func Run(ctx context.Context, snap *source.Snapshot, reg *provider.Registry, opts Options) (*Outcome, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot is nil", ErrInvalidInput)
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is nil", ErrInvalidInput)
	}

	out := &Outcome{Project: opts.Project, Mode: opts.Mode, Final: snap}
	timer := observ.NewTimer()
	runSpan, ctx := trace.Start(trace.WithProject(ctx, opts.Project), trace.ScopeRun, "run")
	warn := tracedWarn(ctx, opts.Warn)

	err := run(ctx, snap, reg, opts, out, timer, warn)

	out.Timing = timer.Report()
	runSpan.WithExtra("mode", opts.Mode.String()).
		End(fmt.Sprintf("found=%d fixed=%d modified=%d", out.DiagnosticsFound, out.FixesApplied, len(out.Modified)))
	opts.Progress.emit(Event{Project: opts.Project, Kind: EventDone, Outcome: out, Err: err})
	return out, err
}

func run(ctx context.Context, snap *source.Snapshot, reg *provider.Registry, opts Options, out *Outcome, timer *observ.Timer, warn provider.WarnFunc) error {
	// collect
	phase := beginPhase(ctx, timer, opts, "collect")
	collected, err := collect.Collect(phase.ctx, snap, reg.Analyzers(), collect.Options{
		Compiler: opts.Compiler,
		Filter:   opts.Filter,
		Cache:    opts.Cache,
		Warn:     warn,
	})
	if err != nil {
		phase.end("cancelled")
		if ctx.Err() != nil {
			out.Cancelled = true
			return nil
		}
		return err
	}
	out.Diagnostics = collected.Diagnostics
	out.DiagnosticsFound = len(collected.Diagnostics)
	out.CompileErr = collected.CompileErr
	note := fmt.Sprintf("%d diagnostics", out.DiagnosticsFound)
	if collected.Cached {
		note += " (cached)"
	}
	phase.end(note)
	if out.DiagnosticsFound == 0 {
		return nil
	}

	// select
	phase = beginPhase(ctx, timer, opts, "select")
	plan := fix.Select(phase.ctx, collected.Diagnostics, reg.Fixers(), snap, fix.SelectOptions{Prefer: opts.Prefer, Warn: warn})
	for _, u := range plan.Unfixable() {
		out.Unfixable = append(out.Unfixable, u.String())
	}
	phase.end(fmt.Sprintf("%d categories, %d unfixable", len(plan.Categories), len(out.Unfixable)))

	// apply
	phase = beginPhase(ctx, timer, opts, "apply")
	total := len(plan.Categories)
	applied, err := fix.Apply(phase.ctx, plan, snap, fix.ApplyOptions{
		Warn:   warn,
		NoBulk: opts.NoBulk,
		OnCategory: func(cr fix.CategoryResult) {
			opts.Progress.emit(Event{Project: opts.Project, Kind: EventCategory, Category: &cr, Total: total})
		},
	})
	if err != nil {
		phase.end("failed")
		return err
	}
	out.Final = applied.Snapshot
	out.FixesApplied = applied.FixesApplied
	out.Modified = applied.Modified.Paths()
	out.Categories = applied.Categories
	out.Cancelled = applied.Cancelled
	phase.end(fmt.Sprintf("%d fixes, %d artifacts", out.FixesApplied, len(out.Modified)))

	if out.Cancelled || opts.Mode != ModeCommit || len(out.Modified) == 0 {
		return nil
	}
	if ctx.Err() != nil {
		out.Cancelled = true
		return nil
	}

	// commit
	phase = beginPhase(ctx, timer, opts, "commit")
	err = commit(phase.ctx, out, opts.Writer)
	phase.end(fmt.Sprintf("%d written", len(out.Written)))
	return err
}

// commit persists every modified artifact. Writes are independent; all
// failures are joined.
func commit(ctx context.Context, out *Outcome, w writeback.Writer) error {
	if w == nil {
		w = writeback.DiskWriter{BaseDir: out.Final.BaseDir()}
	}
	var errs []error
	for _, path := range out.Modified {
		f, ok := out.Final.Lookup(path)
		if !ok {
			errs = append(errs, &writeback.WriteError{Path: path, Err: source.ErrUnknownArtifact})
			continue
		}
		if err := w.Write(ctx, path, f.Encoded()); err != nil {
			var werr *writeback.WriteError
			if !errors.As(err, &werr) {
				err = &writeback.WriteError{Path: path, Err: err}
			}
			errs = append(errs, err)
			continue
		}
		out.Written = append(out.Written, path)
	}
	return errors.Join(errs...)
}

type phaseSpan struct {
	ctx   context.Context
	span  *trace.Span
	timer *observ.Timer
	idx   int
}

func beginPhase(ctx context.Context, timer *observ.Timer, opts Options, name string) *phaseSpan {
	opts.Progress.emit(Event{Project: opts.Project, Kind: EventPhase, Phase: name})
	span, ctx := trace.Start(ctx, trace.ScopePhase, name)
	return &phaseSpan{
		ctx:   ctx,
		span:  span,
		timer: timer,
		idx:   timer.Begin(name),
	}
}

func (p *phaseSpan) end(note string) {
	p.timer.End(p.idx, note)
	p.span.End(note)
}

// tracedWarn forwards provider warnings to the caller and to the tracer.
func tracedWarn(ctx context.Context, next provider.WarnFunc) provider.WarnFunc {
	return func(err error) {
		trace.Mark(ctx, trace.ScopeProvider, "warning", err.Error())
		next.Warn(err)
	}
}
