package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"bulkfix/internal/source"
)

// shortLine is one entry of the short format.
type shortLine struct {
	label string // severity or "note"
	code  Code
	path  string
	pos   source.LineCol
	msg   string
}

// FormatShortDiagnostics renders one line per diagnostic,
//
//	<severity> <code> <path>:<line>:<col> <message>
//
// sorted by path, line, column and code. Notes become "note" lines of their
// own when includeNotes is set. Entries without a location are left out.
func FormatShortDiagnostics(diags []Diagnostic, snap *source.Snapshot, includeNotes bool) string {
	var lines []shortLine
	add := func(label string, code Code, sp source.Span, msg string) {
		f, ok := snap.Get(sp.File)
		if !ok {
			return
		}
		start, _, ok := snap.Resolve(sp)
		if !ok {
			return
		}
		lines = append(lines, shortLine{
			label: label,
			code:  code,
			path:  strings.TrimPrefix(f.Path, "./"),
			pos:   start,
			msg:   strings.Join(strings.Fields(msg), " "),
		})
	}
	for _, d := range diags {
		add(strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}

	slices.SortStableFunc(lines, func(a, b shortLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.pos.Line, b.pos.Line),
			cmp.Compare(a.pos.Col, b.pos.Col),
			cmp.Compare(a.code, b.code),
		)
	})

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", l.label, l.code, l.path, l.pos.Line, l.pos.Col, l.msg)
	}
	return b.String()
}
