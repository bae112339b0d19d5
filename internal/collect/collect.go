// Package collect compiles a snapshot and gathers diagnostics from every
// registered analyzer.
package collect

import (
	"context"
	"errors"
	"fmt"

	"bulkfix/internal/compile"
	"bulkfix/internal/dcache"
	"bulkfix/internal/diag"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
	"bulkfix/internal/trace"
)

// Options tune a collection pass.
type Options struct {
	Compiler compile.Compiler // nil => compile.Default
	Filter   diag.CodeSet     // nil => все категории
	Cache    *dcache.Cache
	Warn     provider.WarnFunc
	// MaxDiagnostics bounds the result after sorting; 0 means unlimited.
	// The cache always holds the full set.
	MaxDiagnostics int
}

// Result is what a collection pass produced.
type Result struct {
	// Diagnostics are sorted by location and free of duplicates.
	Diagnostics []diag.Diagnostic
	// CompileErr is set when the snapshot failed to compile; Diagnostics is
	// empty in that case.
	CompileErr *compile.Error
	// Dropped counts hidden, unlocatable and filtered-out diagnostics.
	Dropped int
	// Truncated counts diagnostics cut by MaxDiagnostics.
	Truncated int
	// Duplicates counts identical reports collapsed into one. They are not
	// part of Dropped.
	Duplicates int
	// Cached reports that the result came from the diagnostic cache.
	Cached bool
}

// Collect compiles snap and runs analyzers over it in order. Analyzer
// failures are sent to opts.Warn and the failing analyzer contributes
// nothing. Only cancellation is returned as an error.
func Collect(ctx context.Context, snap *source.Snapshot, analyzers []provider.Analyzer, opts Options) (*Result, error) {
	res := &Result{}
	if len(analyzers) == 0 {
		return res, nil
	}
	if snap == nil {
		return nil, fmt.Errorf("collect: snapshot is nil")
	}

	var key dcache.Key
	if opts.Cache != nil {
		names := make([]string, len(analyzers))
		for i, a := range analyzers {
			names[i] = provider.NameOf(a)
		}
		key = dcache.KeyFor(snap, names, opts.Filter)
		cached, ok, err := opts.Cache.Get(key)
		if err != nil {
			opts.Warn.Warn(fmt.Errorf("diagnostic cache: %w", err))
		} else if ok {
			bag := diag.NewBag()
			for _, d := range cached {
				bag.Add(d)
			}
			res.Truncated = bag.Truncate(opts.MaxDiagnostics)
			res.Diagnostics = bag.Items()
			res.Cached = true
			return res, nil
		}
	}

	compiler := opts.Compiler
	if compiler == nil {
		compiler = compile.Default
	}
	cspan, _ := trace.Start(ctx, trace.ScopePhase, "compile")
	unit, err := compiler.Compile(ctx, snap)
	cspan.End("")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		var cerr *compile.Error
		if !errors.As(err, &cerr) {
			cerr = &compile.Error{Err: err}
		}
		res.CompileErr = cerr
		return res, nil
	}

	bag := diag.NewBag()
	dedup := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, a := range analyzers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		local := diag.NewBag()
		name := provider.NameOf(a)
		aspan, _ := trace.Start(ctx, trace.ScopeProvider, "analyze "+name)
		err := provider.Invoke(name, "analyze", "", func() error {
			return a.Analyze(ctx, unit, diag.BagReporter{Bag: local})
		})
		if err != nil {
			aspan.End("failed")
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return nil, ctxErr
			}
			opts.Warn.Warn(err)
			continue
		}
		aspan.End(fmt.Sprintf("%d diagnostics", local.Len()))
		res.Dropped += local.Filter(func(d diag.Diagnostic) bool { return keep(snap, opts.Filter, d) })
		for _, d := range local.Items() {
			dedup.Report(d)
		}
	}

	res.Duplicates = dedup.Suppressed()
	bag.Sort()
	if opts.Cache != nil {
		if err := opts.Cache.Put(key, bag.Items()); err != nil {
			opts.Warn.Warn(fmt.Errorf("diagnostic cache: %w", err))
		}
	}
	res.Truncated = bag.Truncate(opts.MaxDiagnostics)
	res.Diagnostics = bag.Items()
	return res, nil
}

func keep(snap *source.Snapshot, filter diag.CodeSet, d diag.Diagnostic) bool {
	if d.Severity == diag.SevHidden {
		return false
	}
	if !snap.Contains(d.Primary) {
		return false
	}
	return filter.Allows(d.Code)
}
