// Package diag defines the diagnostic model shared by analyzers, the fix
// pipeline and the output formatters.
//
// A Diagnostic has a Severity (Hidden, Info, Warning, Error), a Code that
// names its category, a short Message, a Primary span and optional Notes.
// Hidden diagnostics are dropped by the collector and never fixed. A
// diagnostic whose span is source.NoSpan lives outside any artifact.
//
// Diagnostics do not carry fixes: fixers registered in internal/provider
// offer them on demand, so analysis and remediation stay independently
// swappable. Every diagnostic sharing a Code is one remediation unit.
//
// Analyzers receive a Reporter and call Report(diag.NewWarning(...)).
// BagReporter collects into a Bag; DedupReporter drops repeated findings
// before forwarding. The package does no IO: rendering lives in
// internal/diagfmt.
package diag
