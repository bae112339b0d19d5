package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bulkfix/internal/compile"
	"bulkfix/internal/diag"
	"bulkfix/internal/fix"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// whitespace reports WS001, WS002 and WS003.
type whitespace struct {
	cfg Config
}

func (*whitespace) Name() string { return "whitespace" }

func (*whitespace) Codes() []diag.Code {
	return []diag.Code{CodeTrailingWhitespace, CodeFinalNewline, CodeTabIndent}
}

func (w *whitespace) Analyze(ctx context.Context, unit *compile.Unit, r diag.Reporter) error {
	for _, f := range documents(unit.Snapshot) {
		if err := ctx.Err(); err != nil {
			return err
		}
		for line := 1; line <= f.LineCount(); line++ {
			start, end, ok := f.LineBounds(offset(line))
			if !ok {
				break
			}
			text := string(f.Content[start:end])

			if trimmed := trimTrailing(text); len(trimmed) != len(text) {
				sp := source.Span{File: f.ID, Start: start + offset(len(trimmed)), End: end}
				r.Report(diag.NewWarning(CodeTrailingWhitespace, sp, "trailing whitespace"))
			}
			if indent := indentation(text); strings.Contains(indent, "\t") {
				sp := source.Span{File: f.ID, Start: start, End: start + offset(len(indent))}
				r.Report(diag.NewWarning(CodeTabIndent, sp, "indentation uses tabs"))
			}
		}
		if n := len(f.Content); n > 0 && f.Content[n-1] != '\n' {
			sp := source.Span{File: f.ID, Start: offset(n), End: offset(n)}
			r.Report(diag.NewInfo(CodeFinalNewline, sp, "missing final newline"))
		}
	}
	return nil
}

// whitespaceFixer fixes WS001-WS003, one occurrence at a time or in bulk.
type whitespaceFixer struct {
	cfg Config
}

func (*whitespaceFixer) Name() string { return "whitespace" }

func (*whitespaceFixer) FixableCodes() []diag.Code {
	return []diag.Code{CodeTrailingWhitespace, CodeFinalNewline, CodeTabIndent}
}

func indentVariant(width int) string { return "spaces-" + strconv.Itoa(width) }

func indentTitle(width int) string {
	return fmt.Sprintf("Convert indentation to %d spaces", width)
}

func parseIndentVariant(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "spaces-"))
	if err != nil || n <= 0 || !strings.HasPrefix(key, "spaces-") {
		return 0, false
	}
	return n, true
}

func (w *whitespaceFixer) Actions(_ context.Context, d diag.Diagnostic, fc provider.FixContext) ([]provider.Action, error) {
	if d.Code == CodeFinalNewline {
		return finalNewlineActions(d, fc)
	}

	path, line, _, err := originLine(d, fc)
	if err != nil {
		return nil, err
	}
	f, start, end, err := currentLine(fc, path, line)
	if err != nil {
		return nil, err
	}
	text := string(f.Content[start:end])

	switch d.Code {
	case CodeTrailingWhitespace:
		trimmed := trimTrailing(text)
		if len(trimmed) == len(text) {
			return nil, fmt.Errorf("%s:%d: no trailing whitespace left", path, line)
		}
		sp := source.Span{File: f.ID, Start: start + offset(len(trimmed)), End: end}
		return []provider.Action{fix.DeleteSpan("Remove trailing whitespace", sp, text[len(trimmed):])}, nil
	case CodeTabIndent:
		indent := indentation(text)
		if !strings.Contains(indent, "\t") {
			return nil, fmt.Errorf("%s:%d: indentation has no tabs left", path, line)
		}
		sp := source.Span{File: f.ID, Start: start, End: start + offset(len(indent))}
		widths := []int{w.cfg.tabWidth(), w.cfg.altTabWidth()}
		actions := make([]provider.Action, 0, len(widths))
		for _, width := range widths {
			actions = append(actions, fix.ReplaceSpan(indentTitle(width), sp, expandIndent(indent, width), indent,
				fix.WithVariant(indentVariant(width))))
		}
		return actions, nil
	}
	return nil, nil
}

func finalNewlineActions(d diag.Diagnostic, fc provider.FixContext) ([]provider.Action, error) {
	cur := fc.Current
	if cur == nil {
		cur = fc.Origin
	}
	f, ok := cur.Get(d.Primary.File)
	if !ok {
		return nil, fmt.Errorf("%s: artifact %d not found", d.Code, d.Primary.File)
	}
	n := len(f.Content)
	if n == 0 || f.Content[n-1] == '\n' {
		return nil, fmt.Errorf("%s: already ends with a newline", f.Path)
	}
	at := source.Span{File: f.ID, Start: offset(n), End: offset(n)}
	return []provider.Action{fix.InsertText("Insert final newline", at, "\n", "")}, nil
}

func (w *whitespaceFixer) Bulk(code diag.Code) provider.BulkFixer {
	switch code {
	case CodeTrailingWhitespace:
		return provider.BulkFunc(func(ctx context.Context, _ diag.Code, _ string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error) {
			return rewriteFiles(ctx, snap, diags, trimTrailing)
		})
	case CodeTabIndent:
		return provider.BulkFunc(func(ctx context.Context, _ diag.Code, variant string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error) {
			width, ok := parseIndentVariant(variant)
			if !ok {
				return nil, fmt.Errorf("unknown indentation variant %q", variant)
			}
			return rewriteFiles(ctx, snap, diags, func(s string) string { return expandIndent(s, width) })
		})
	case CodeFinalNewline:
		return provider.BulkFunc(func(ctx context.Context, _ diag.Code, _ string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error) {
			for _, d := range diags {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				next, err := insertFinalNewline(d.Primary.File)(ctx, snap)
				if err != nil {
					return nil, err
				}
				snap = next
			}
			return snap, nil
		})
	}
	return nil
}

func insertFinalNewline(id source.FileID) provider.ApplyFunc {
	return func(_ context.Context, snap *source.Snapshot) (*source.Snapshot, error) {
		f, ok := snap.Get(id)
		if !ok {
			return nil, fmt.Errorf("artifact %d not found", id)
		}
		if n := len(f.Content); n == 0 || f.Content[n-1] == '\n' {
			return snap, nil
		}
		return snap.WithContent(f.Path, append(append([]byte(nil), f.Content...), '\n'))
	}
}
