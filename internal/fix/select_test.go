package fix

import (
	"context"
	"errors"
	"testing"

	"bulkfix/internal/diag"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

func TestSelectGroupsByFirstSeenCode(t *testing.T) {
	diags := []diag.Diagnostic{
		{Code: "B", Message: "b1"},
		{Code: "A", Message: "a1"},
		{Code: "B", Message: "b2"},
	}
	plan := Select(context.Background(), diags, nil, nil, SelectOptions{})
	if len(plan.Categories) != 2 || plan.Categories[0].Code != "B" || plan.Categories[1].Code != "A" {
		t.Fatalf("unexpected categories: %+v", plan.Categories)
	}
	if len(plan.Categories[0].Diagnostics) != 2 {
		t.Fatalf("category B should hold both occurrences")
	}
	unfixable := plan.Unfixable()
	if len(unfixable) != 2 || unfixable[0].String() != "B: b1" || unfixable[1].String() != "A: a1" {
		t.Fatalf("unexpected unfixable list: %v", unfixable)
	}
}

func TestSelectFirstRegisteredFixerWins(t *testing.T) {
	first := &fakeFixer{name: "first", codes: []diag.Code{"X"}, offer: replaceOffer("foo", [3]string{"First", "", "bar"})}
	second := &fakeFixer{name: "second", codes: []diag.Code{"X"}, offer: replaceOffer("foo", [3]string{"Second", "", "baz"})}
	plan := Select(context.Background(), []diag.Diagnostic{{Code: "X"}, {Code: "X"}},
		[]provider.Fixer{first, second}, nil, SelectOptions{})

	cat := plan.Categories[0]
	if !cat.Fixable() || cat.Fixer.Name() != "first" || cat.Key != "First" {
		t.Fatalf("unexpected selection: fixer=%v key=%q", cat.Fixer, cat.Key)
	}
	if first.offers != 1 || second.offers != 0 {
		t.Fatalf("expected exactly one offer on the representative, got %d/%d", first.offers, second.offers)
	}
}

func TestSelectPreferredTitle(t *testing.T) {
	offer := replaceOffer("foo",
		[3]string{"Convert indentation to 4 spaces", "spaces-4", ""},
		[3]string{"Convert indentation to 2 spaces", "spaces-2", ""},
		[3]string{"Straße umbenennen", "strasse", ""},
	)
	tests := []struct {
		prefer string
		want   string
	}{
		{"", "spaces-4"},
		{"convert INDENTATION to 2", "spaces-2"},
		{"no such title", "spaces-4"},
		{"STRASSE", "strasse"},
	}
	for _, tt := range tests {
		fixer := &fakeFixer{name: "ws", codes: []diag.Code{"WS003"}, offer: offer}
		plan := Select(context.Background(), []diag.Diagnostic{{Code: "WS003"}},
			[]provider.Fixer{fixer}, nil, SelectOptions{Prefer: tt.prefer})
		if got := plan.Categories[0].Key; got != tt.want {
			t.Errorf("prefer %q: key = %q, want %q", tt.prefer, got, tt.want)
		}
	}
}

func TestSelectUnfixableOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		offer    offerFunc
		wantWarn bool
	}{
		{"error", func(diag.Diagnostic, provider.FixContext) ([]provider.Action, error) {
			return nil, errors.New("boom")
		}, true},
		{"panic", func(diag.Diagnostic, provider.FixContext) ([]provider.Action, error) {
			panic("kaput")
		}, true},
		{"no actions", func(diag.Diagnostic, provider.FixContext) ([]provider.Action, error) {
			return nil, nil
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warnings []error
			fixer := &fakeFixer{name: "f", codes: []diag.Code{"X"}, offer: tt.offer}
			plan := Select(context.Background(), []diag.Diagnostic{{Code: "X", Message: "bad thing"}},
				[]provider.Fixer{fixer}, nil, SelectOptions{Warn: func(err error) { warnings = append(warnings, err) }})
			cat := plan.Categories[0]
			if cat.Fixable() || cat.Unfixable == nil || cat.Unfixable.String() != "X: bad thing" {
				t.Fatalf("expected unfixable category, got %+v", cat)
			}
			if (len(warnings) > 0) != tt.wantWarn {
				t.Fatalf("warnings = %v", warnings)
			}
		})
	}
}

// brokenFixer panics while declaring its categories or its name.
type brokenFixer struct {
	fakeFixer
	badName bool
}

func (b *brokenFixer) Name() string {
	if b.badName {
		panic("no name")
	}
	return b.name
}

func (*brokenFixer) FixableCodes() []diag.Code { panic("boom") }

func TestSelectSkipsFixerWithBrokenDeclaration(t *testing.T) {
	diags := []diag.Diagnostic{{Code: "X", Message: "bad thing"}}
	working := &fakeFixer{name: "ok", codes: []diag.Code{"X"}, offer: func(diag.Diagnostic, provider.FixContext) ([]provider.Action, error) {
		return []provider.Action{{Title: "Fix it"}}, nil
	}}

	tests := []struct {
		name        string
		fixers      []provider.Fixer
		wantFixable bool
	}{
		{"falls through to next fixer", []provider.Fixer{&brokenFixer{fakeFixer: fakeFixer{name: "broken"}}, working}, true},
		{"only broken fixer", []provider.Fixer{&brokenFixer{badName: true}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warnings []error
			plan := Select(context.Background(), diags, tt.fixers, nil,
				SelectOptions{Warn: func(err error) { warnings = append(warnings, err) }})
			cat := plan.Categories[0]
			if cat.Fixable() != tt.wantFixable {
				t.Fatalf("Fixable() = %v, want %v (%+v)", cat.Fixable(), tt.wantFixable, cat)
			}
			if len(warnings) != 1 || !errors.Is(warnings[0], provider.ErrPanic) {
				t.Fatalf("expected one panic warning, got %v", warnings)
			}
		})
	}
}

func TestSelectPassesOriginSnapshot(t *testing.T) {
	snap := virtualSnapshot("a.txt", "foo")
	var seen provider.FixContext
	fixer := &fakeFixer{name: "f", codes: []diag.Code{"X"}, offer: func(d diag.Diagnostic, fc provider.FixContext) ([]provider.Action, error) {
		seen = fc
		return replaceOffer("foo", [3]string{"Rename", "", "bar"})(d, fc)
	}}
	Select(context.Background(), []diag.Diagnostic{{Code: "X", Primary: source.Span{Start: 0, End: 3}}},
		[]provider.Fixer{fixer}, snap, SelectOptions{})
	if seen.Origin != snap || seen.Current != snap {
		t.Fatalf("offer must see the collected snapshot as origin and current")
	}
}
