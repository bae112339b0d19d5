package fix

import (
	"context"
	"errors"
	"fmt"

	"bulkfix/internal/diag"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
	"bulkfix/internal/trace"
)

// ResultKind tags how a category ended up.
type ResultKind uint8

const (
	KindBulkApplied ResultKind = iota
	KindIndividuallyApplied
	KindUnfixable
	// KindSkipped means the category was fixable but no occurrence could be
	// applied.
	KindSkipped
)

func (k ResultKind) String() string {
	switch k {
	case KindBulkApplied:
		return "bulk"
	case KindIndividuallyApplied:
		return "individual"
	case KindUnfixable:
		return "unfixable"
	case KindSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("ResultKind(%d)", uint8(k))
	}
}

// CategoryResult is the outcome for one category.
type CategoryResult struct {
	Code     diag.Code
	Kind     ResultKind
	Provider string
	Key      string
	Title    string
	// Found is the number of diagnostics of the category.
	Found int
	// Applied counts fixed diagnostics; Missed counts occurrences whose
	// individual application failed.
	Applied   int
	Missed    int
	Paths     []string
	Unfixable *Unfixable
}

// Result is what Apply produced.
type Result struct {
	// Snapshot is the last consistent snapshot.
	Snapshot     *source.Snapshot
	FixesApplied int
	Modified     *PathSet
	Categories   []CategoryResult
	// Cancelled is set when ctx was cancelled before every category ran.
	Cancelled bool
}

// ApplyOptions tune Apply.
type ApplyOptions struct {
	Warn provider.WarnFunc
	// NoBulk forces individual application even for bulk-capable fixers.
	NoBulk bool
	// OnCategory is called after each category completes.
	OnCategory func(CategoryResult)
}

// Apply remediates every fixable category of plan, in plan order, starting
// from snap. Provider failures never abort the run: a failing bulk call
// falls back to individual application and a failing occurrence is skipped.
func Apply(ctx context.Context, plan *Plan, snap *source.Snapshot, opts ApplyOptions) (*Result, error) {
	if plan == nil {
		return nil, ErrNoPlan
	}
	if snap == nil {
		return nil, fmt.Errorf("fix: snapshot is nil")
	}
	res := &Result{Snapshot: snap, Modified: NewPathSet()}

	for i := range plan.Categories {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		cat := &plan.Categories[i]
		span, cctx := trace.Start(ctx, trace.ScopeCategory, string(cat.Code))

		var cr CategoryResult
		if cat.Fixable() {
			cr = applyCategory(cctx, plan.Origin, cat, res, opts)
		} else {
			cr = unfixableResult(cat)
		}
		span.WithExtra("kind", cr.Kind.String()).End(fmt.Sprintf("%d/%d applied", cr.Applied, cr.Found))

		res.Categories = append(res.Categories, cr)
		if opts.OnCategory != nil {
			opts.OnCategory(cr)
		}
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
	}
	return res, nil
}

func unfixableResult(cat *Category) CategoryResult {
	u := cat.Unfixable
	if u == nil {
		u = &Unfixable{Code: cat.Code}
		if len(cat.Diagnostics) > 0 {
			u.Message = cat.Diagnostics[0].Message
		}
	}
	return CategoryResult{Code: cat.Code, Kind: KindUnfixable, Found: len(cat.Diagnostics), Unfixable: u}
}

// applyCategory: сначала bulk, при неудаче или отсутствии - по одному.
func applyCategory(ctx context.Context, origin *source.Snapshot, cat *Category, res *Result, opts ApplyOptions) CategoryResult {
	cr := CategoryResult{
		Code:     cat.Code,
		Provider: provider.NameOf(cat.Fixer),
		Key:      cat.Key,
		Title:    cat.Title,
		Found:    len(cat.Diagnostics),
	}
	if origin == nil {
		origin = res.Snapshot
	}
	if !opts.NoBulk {
		if next, ok := tryBulk(ctx, cat, res.Snapshot, opts.Warn); ok {
			cr.Kind = KindBulkApplied
			cr.Applied = len(cat.Diagnostics)
			cr.Paths = merge(res, next, cr.Applied)
			return cr
		}
	}
	return applyIndividually(ctx, origin, cat, res, opts.Warn, cr)
}

func tryBulk(ctx context.Context, cat *Category, current *source.Snapshot, warn provider.WarnFunc) (*source.Snapshot, bool) {
	capable, ok := cat.Fixer.(provider.BulkCapable)
	if !ok {
		return nil, false
	}
	var bulk provider.BulkFixer
	err := provider.Invoke(provider.NameOf(cat.Fixer), "bulk", cat.Code, func() error {
		bulk = capable.Bulk(cat.Code)
		return nil
	})
	if err != nil {
		warn.Warn(err)
		return nil, false
	}
	if bulk == nil {
		return nil, false
	}

	var next *source.Snapshot
	err = provider.Invoke(provider.NameOf(cat.Fixer), "bulk", cat.Code, func() error {
		var fixErr error
		next, fixErr = bulk.FixAll(ctx, cat.Code, cat.Key, cat.Diagnostics, current)
		return fixErr
	})
	if err != nil {
		if ctx.Err() == nil {
			warn.Warn(err)
		}
		return nil, false
	}
	if next == nil {
		warn.Warn(&provider.InvocationError{Provider: provider.NameOf(cat.Fixer), Op: "bulk", Code: cat.Code, Err: errors.New("no snapshot returned")})
		return nil, false
	}
	return next, true
}

func applyIndividually(ctx context.Context, origin *source.Snapshot, cat *Category, res *Result, warn provider.WarnFunc, cr CategoryResult) CategoryResult {
	paths := NewPathSet()
	for _, d := range cat.Diagnostics {
		if ctx.Err() != nil {
			break
		}
		next, err := applyOne(ctx, origin, cat, d, res.Snapshot)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			warn.Warn(err)
			cr.Missed++
			continue
		}
		cr.Applied++
		paths.Add(merge(res, next, 1)...)
	}
	cr.Paths = paths.Paths()
	if cr.Applied > 0 {
		cr.Kind = KindIndividuallyApplied
	} else {
		cr.Kind = KindSkipped
	}
	return cr
}

func applyOne(ctx context.Context, origin *source.Snapshot, cat *Category, d diag.Diagnostic, current *source.Snapshot) (*source.Snapshot, error) {
	name := provider.NameOf(cat.Fixer)
	var actions []provider.Action
	err := provider.Invoke(name, "actions", cat.Code, func() error {
		var offerErr error
		actions, offerErr = cat.Fixer.Actions(ctx, d, provider.FixContext{Origin: origin, Current: current})
		return offerErr
	})
	if err != nil {
		return nil, err
	}
	action, ok := pickByKey(actions, cat.Key)
	if !ok {
		return nil, &provider.InvocationError{Provider: name, Op: "actions", Code: cat.Code, Err: errors.New("no actions offered")}
	}
	if action.Apply == nil {
		return nil, &provider.InvocationError{Provider: name, Op: "apply", Code: cat.Code, Err: fmt.Errorf("action %q has no apply function", action.Title)}
	}
	var next *source.Snapshot
	err = provider.Invoke(name, "apply", cat.Code, func() error {
		var applyErr error
		next, applyErr = action.Apply(ctx, current)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, &provider.InvocationError{Provider: name, Op: "apply", Code: cat.Code, Err: errors.New("no snapshot returned")}
	}
	return next, nil
}

// merge adopts next as the current snapshot and records changed paths.
func merge(res *Result, next *source.Snapshot, fixed int) []string {
	changed := source.Diff(res.Snapshot, next)
	res.Modified.Add(changed...)
	res.FixesApplied += fixed
	res.Snapshot = next
	return changed
}
