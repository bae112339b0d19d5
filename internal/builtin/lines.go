package builtin

import (
	"context"
	"fmt"
	"strings"

	"bulkfix/internal/diag"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// originLine resolves the 1-based line of a diagnostic in the snapshot it
// was reported against. Line structure is preserved by every built-in fix,
// so the number stays valid in later snapshots.
func originLine(d diag.Diagnostic, fc provider.FixContext) (path string, line uint32, col uint32, err error) {
	origin := fc.Origin
	if origin == nil {
		origin = fc.Current
	}
	f, ok := origin.Get(d.Primary.File)
	if !ok {
		return "", 0, 0, fmt.Errorf("%s: artifact %d not found", d.Code, d.Primary.File)
	}
	start, _, ok := origin.Resolve(d.Primary)
	if !ok {
		return "", 0, 0, fmt.Errorf("%s: span %s out of range", d.Code, d.Primary)
	}
	return f.Path, start.Line, start.Col, nil
}

// currentLine finds line of path in the snapshot an action will be applied
// to and returns the artifact with the line's byte bounds.
func currentLine(fc provider.FixContext, path string, line uint32) (f *source.File, start, end uint32, err error) {
	cur := fc.Current
	if cur == nil {
		cur = fc.Origin
	}
	f, ok := cur.Lookup(path)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: %s", source.ErrUnknownArtifact, path)
	}
	start, end, ok = f.LineBounds(line)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%s: line %d no longer exists", path, line)
	}
	return f, start, end, nil
}

// rewriteFiles applies fn to every line of the files named by diags.
func rewriteFiles(ctx context.Context, snap *source.Snapshot, diags []diag.Diagnostic, fn func(string) string) (*source.Snapshot, error) {
	changes := make(map[string][]byte)
	for _, d := range diags {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, ok := snap.Get(d.Primary.File)
		if !ok {
			return nil, fmt.Errorf("%s: artifact %d not found", d.Code, d.Primary.File)
		}
		if _, done := changes[f.Path]; done {
			continue
		}
		lines := strings.Split(string(f.Content), "\n")
		for i, l := range lines {
			if i < len(lines)-1 {
				if body, ok := strings.CutSuffix(l, "\r"); ok {
					lines[i] = fn(body) + "\r"
					continue
				}
			}
			lines[i] = fn(l)
		}
		changes[f.Path] = []byte(strings.Join(lines, "\n"))
	}
	return snap.WithChanges(changes)
}

func trimTrailing(line string) string {
	return strings.TrimRight(line, " \t")
}

func indentation(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// expandIndent converts the leading indentation of line to spaces using tab
// stops every width columns.
func expandIndent(line string, width int) string {
	indent := indentation(line)
	if !strings.Contains(indent, "\t") {
		return line
	}
	col := 0
	for _, c := range indent {
		if c == '\t' {
			col += width - col%width
		} else {
			col++
		}
	}
	return strings.Repeat(" ", col) + line[len(indent):]
}
