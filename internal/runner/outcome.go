package runner

import (
	"bulkfix/internal/compile"
	"bulkfix/internal/diag"
	"bulkfix/internal/fix"
	"bulkfix/internal/observ"
	"bulkfix/internal/source"
)

// Outcome summarizes one project run.
type Outcome struct {
	Project          string
	Mode             Mode
	DiagnosticsFound int
	FixesApplied     int
	// Modified lists changed artifact paths in first-seen order.
	Modified []string
	// Unfixable holds one "<code>: <message>" entry per unfixable category.
	Unfixable []string
	// Written lists the artifacts persisted in commit mode.
	Written    []string
	Categories []fix.CategoryResult
	CompileErr *compile.Error
	Cancelled  bool
	Timing     observ.Report

	// Diagnostics are the collected diagnostics and Final is the last
	// consistent snapshot. Neither is serialized.
	Diagnostics []diag.Diagnostic `json:"-"`
	Final       *source.Snapshot  `json:"-"`
}

// ChangesPending reports that a verify run found something to fix.
func (o *Outcome) ChangesPending() bool {
	return o != nil && o.Mode == ModeVerify && len(o.Modified) > 0
}

// Unfixed returns the number of unfixable categories.
func (o *Outcome) Unfixed() int {
	if o == nil {
		return 0
	}
	return len(o.Unfixable)
}
