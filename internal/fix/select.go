package fix

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"bulkfix/internal/diag"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// ErrNoPlan is returned by Apply when it is given no plan.
var ErrNoPlan = errors.New("fix: no plan")

// Unfixable records a category that no provider could remediate.
type Unfixable struct {
	Code    diag.Code
	Message string
}

func (u Unfixable) String() string {
	return string(u.Code) + ": " + u.Message
}

// Category is one diagnostic category of a plan with every occurrence of it.
// A fixable category has a Fixer and a pinned variant Key; an unfixable one
// carries Unfixable instead.
type Category struct {
	Code        diag.Code
	Diagnostics []diag.Diagnostic
	Fixer       provider.Fixer
	Key         string // канонический variant-key для всех вхождений
	Title       string
	Unfixable   *Unfixable
}

// Fixable reports whether the category was assigned a fixer.
func (c *Category) Fixable() bool {
	return c.Unfixable == nil && c.Fixer != nil
}

// Plan lists categories in first-seen order.
type Plan struct {
	Categories []Category
	// Origin is the snapshot the diagnostics were collected against.
	Origin *source.Snapshot
}

// Unfixable returns the unfixable categories in plan order.
func (p *Plan) Unfixable() []Unfixable {
	if p == nil {
		return nil
	}
	out := make([]Unfixable, 0)
	for i := range p.Categories {
		if u := p.Categories[i].Unfixable; u != nil {
			out = append(out, *u)
		}
	}
	return out
}

// SelectOptions tune Select.
type SelectOptions struct {
	// Prefer is matched case-insensitively as a title prefix.
	Prefer string
	Warn   provider.WarnFunc
}

// Select groups diagnostics by category, assigns each category the first
// fixer declaring it and pins one variant key per category. The preferred
// title hint wins over provider order when some offered title starts with it.
func Select(ctx context.Context, diagnostics []diag.Diagnostic, fixers []provider.Fixer, snap *source.Snapshot, opts SelectOptions) *Plan {
	plan := &Plan{Origin: snap}
	for _, group := range groupByCode(diagnostics) {
		plan.Categories = append(plan.Categories, selectCategory(ctx, group, fixers, snap, opts))
	}
	return plan
}

func selectCategory(ctx context.Context, cat Category, fixers []provider.Fixer, snap *source.Snapshot, opts SelectOptions) Category {
	representative := cat.Diagnostics[0]
	unfixable := &Unfixable{Code: cat.Code, Message: representative.Message}

	fixer := firstFixerFor(fixers, cat.Code, opts.Warn)
	if fixer == nil {
		cat.Unfixable = unfixable
		return cat
	}

	var actions []provider.Action
	err := provider.Invoke(provider.NameOf(fixer), "actions", cat.Code, func() error {
		var offerErr error
		actions, offerErr = fixer.Actions(ctx, representative, provider.FixContext{Origin: snap, Current: snap})
		return offerErr
	})
	if err != nil {
		opts.Warn.Warn(err)
		cat.Unfixable = unfixable
		return cat
	}
	chosen, ok := chooseAction(actions, opts.Prefer)
	if !ok {
		cat.Unfixable = unfixable
		return cat
	}
	cat.Fixer = fixer
	cat.Key = chosen.Key()
	cat.Title = chosen.Title
	return cat
}

// firstFixerFor skips fixers whose declaration fails; they are reported to
// warn and treated as declaring nothing.
func firstFixerFor(fixers []provider.Fixer, code diag.Code, warn provider.WarnFunc) provider.Fixer {
	for _, f := range fixers {
		if f == nil {
			continue
		}
		codes, err := provider.FixableCodesOf(f)
		if err != nil {
			warn.Warn(err)
			continue
		}
		if provider.Declares(codes, code) {
			return f
		}
	}
	return nil
}

// chooseAction picks the first action whose title starts with prefer
// (case-insensitive), falling back to the first offered action.
func chooseAction(actions []provider.Action, prefer string) (provider.Action, bool) {
	if len(actions) == 0 {
		return provider.Action{}, false
	}
	if prefer != "" {
		fold := cases.Fold()
		want := fold.String(prefer)
		for _, a := range actions {
			if strings.HasPrefix(fold.String(a.Title), want) {
				return a, true
			}
		}
	}
	return actions[0], true
}

// pickByKey returns the action implementing key, or the first one.
func pickByKey(actions []provider.Action, key string) (provider.Action, bool) {
	if len(actions) == 0 {
		return provider.Action{}, false
	}
	for _, a := range actions {
		if a.Key() == key {
			return a, true
		}
	}
	return actions[0], true
}

func groupByCode(diagnostics []diag.Diagnostic) []Category {
	index := make(map[diag.Code]int)
	groups := make([]Category, 0)
	for _, d := range diagnostics {
		i, ok := index[d.Code]
		if !ok {
			i = len(groups)
			index[d.Code] = i
			groups = append(groups, Category{Code: d.Code})
		}
		groups[i].Diagnostics = append(groups[i].Diagnostics, d)
	}
	return groups
}
