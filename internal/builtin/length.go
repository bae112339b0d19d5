package builtin

import (
	"context"
	"fmt"

	"github.com/mattn/go-runewidth"

	"bulkfix/internal/compile"
	"bulkfix/internal/diag"
	"bulkfix/internal/source"
)

// lineLength reports LN001 for lines wider than max display columns.
// Nothing fixes it.
type lineLength struct {
	max int
}

func (*lineLength) Name() string       { return "line-length" }
func (*lineLength) Codes() []diag.Code { return []diag.Code{CodeLineTooLong} }

func (l *lineLength) Analyze(ctx context.Context, unit *compile.Unit, r diag.Reporter) error {
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
			width := runewidth.StringWidth(text)
			if width <= l.max {
				continue
			}
			cut := overflowAt(text, l.max)
			sp := source.Span{File: f.ID, Start: start + offset(cut), End: end}
			msg := fmt.Sprintf("line is %d columns wide (max %d)", width, l.max)
			r.Report(diag.NewInfo(CodeLineTooLong, sp, msg))
		}
	}
	return nil
}

// overflowAt returns the byte offset of the first rune past limit columns.
func overflowAt(s string, limit int) int {
	cols := 0
	for i, r := range s {
		cols += runewidth.RuneWidth(r)
		if cols > limit {
			return i
		}
	}
	return len(s)
}
