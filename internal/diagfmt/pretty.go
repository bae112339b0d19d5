package diagfmt

import (
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"bulkfix/internal/diag"
	"bulkfix/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Ожидается, что diags уже отсортированы.
// Для каждой диагностики печатается
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// и, если включено, строка исходника с подчёркиванием ^~~~ по Span.
func Pretty(w io.Writer, diags []diag.Diagnostic, snap *source.Snapshot, opts PrettyOpts) error {
	p := &printer{w: w}
	pal := newPalette(opts.Color)
	for i := range diags {
		d := &diags[i]
		p.printf("%s: %s %s: %s\n",
			pal.path.Sprint(location(d.Primary, snap, opts.PathMode)),
			severityColor(pal, d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(string(d.Code)),
			d.Message)
		if opts.Snippet {
			if line, caret, ok := snippet(d.Primary, snap); ok {
				p.printf("  | %s\n  | %s\n", line, pal.err.Sprint(caret))
			}
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				p.printf("  note: %s: %s\n", location(n.Span, snap, opts.PathMode), n.Msg)
			}
		}
	}
	return p.err
}

func severityColor(pal palette, sev diag.Severity) interface{ Sprint(...any) string } {
	switch sev {
	case diag.SevError:
		return pal.err
	case diag.SevWarning:
		return pal.warn
	default:
		return pal.info
	}
}

// location renders "path:line:col" or "-" for spans outside the snapshot.
func location(span source.Span, snap *source.Snapshot, mode PathMode) string {
	if snap == nil || !span.IsValid() {
		return "-"
	}
	f, ok := snap.Get(span.File)
	if !ok {
		return "-"
	}
	pos := f.Position(span.Start)
	return mode.display(f, snap) + ":" + itoa(pos.Line) + ":" + itoa(pos.Col)
}

// snippet returns the line holding span.Start and a caret underline sized
// by display width, so wide runes keep the carets aligned.
func snippet(span source.Span, snap *source.Snapshot) (line, caret string, ok bool) {
	if snap == nil || !snap.Contains(span) {
		return "", "", false
	}
	f, _ := snap.Get(span.File)
	pos := f.Position(span.Start)
	start, end, ok := f.LineBounds(pos.Line)
	if !ok {
		return "", "", false
	}
	line = strings.TrimRight(string(f.Content[start:end]), "\r\n")
	prefix := line[:min(int(span.Start-start), len(line))]
	stop := min(int(span.End-start), len(line))
	marked := 1
	if stop > len(prefix) {
		marked = max(1, runewidth.StringWidth(line[len(prefix):stop]))
	}
	caret = strings.Repeat(" ", runewidth.StringWidth(expandTabs(prefix))) + "^" + strings.Repeat("~", marked-1)
	return expandTabs(line), caret, true
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
