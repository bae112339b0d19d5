// Package provider declares the capabilities the remediation pipeline
// orchestrates: analyzers that report diagnostics and fixers that offer
// actions for them. Implementations are opaque to the pipeline; only the
// declared category sets and the calls below are used.
package provider

import (
	"context"

	"bulkfix/internal/compile"
	"bulkfix/internal/diag"
	"bulkfix/internal/source"
)

// Analyzer inspects a compiled unit and reports diagnostics.
type Analyzer interface {
	Name() string
	// Codes lists the categories the analyzer may report. Informational.
	Codes() []diag.Code
	Analyze(ctx context.Context, unit *compile.Unit, r diag.Reporter) error
}

// FixContext is handed to a fixer when it offers actions. Origin is the
// snapshot the diagnostic was reported against; Current is the snapshot the
// action will be applied to. Both are the same for the first offer of a
// category and diverge during individual application.
type FixContext struct {
	Origin  *source.Snapshot
	Current *source.Snapshot
}

// Fixer offers remediation actions for the categories it declares.
type Fixer interface {
	Name() string
	FixableCodes() []diag.Code
	Actions(ctx context.Context, d diag.Diagnostic, fc FixContext) ([]Action, error)
}

// BulkCapable is implemented by fixers that can remediate a whole category
// in one call. Bulk returns nil when the category has no bulk form.
type BulkCapable interface {
	Bulk(code diag.Code) BulkFixer
}

// BulkFixer applies one variant of a fix to every diagnostic of a category.
type BulkFixer interface {
	FixAll(ctx context.Context, code diag.Code, variant string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error)
}

// BulkFunc adapts a function to BulkFixer.
type BulkFunc func(ctx context.Context, code diag.Code, variant string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error)

func (f BulkFunc) FixAll(ctx context.Context, code diag.Code, variant string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error) {
	return f(ctx, code, variant, diags, snap)
}

// ApplyFunc transforms a snapshot into a derived one.
type ApplyFunc func(ctx context.Context, snap *source.Snapshot) (*source.Snapshot, error)

// Action is one concrete remedy offered for a diagnostic.
type Action struct {
	Title   string
	Variant string // пусто => ключом служит Title
	Apply   ApplyFunc
}

// Key returns the variant key that identifies which remedy the action
// implements. Actions with equal keys have the same effect.
func (a Action) Key() string {
	if a.Variant != "" {
		return a.Variant
	}
	return a.Title
}

// Declares reports whether codes contains code.
func Declares(codes []diag.Code, code diag.Code) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
