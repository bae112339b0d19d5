package builtin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"bulkfix/internal/compile"
	"bulkfix/internal/diag"
	"bulkfix/internal/fix"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// errTermGone is returned when the flagged term disappeared from its line.
var errTermGone = errors.New("term no longer present")

// terms reports TX001 for every whole-word occurrence of a deprecated term.
type terms struct {
	rename map[string]string
	order  []string // детерминированный порядок поиска
}

func newTerms(rename map[string]string) *terms {
	t := &terms{rename: make(map[string]string, len(rename))}
	for old, repl := range rename {
		if old == "" || old == repl {
			continue
		}
		t.rename[old] = repl
		t.order = append(t.order, old)
	}
	sort.Strings(t.order)
	return t
}

func (*terms) Name() string       { return "terms" }
func (*terms) Codes() []diag.Code { return []diag.Code{CodeDeprecatedTerm} }

func (t *terms) Analyze(ctx context.Context, unit *compile.Unit, r diag.Reporter) error {
	if len(t.order) == 0 {
		return nil
	}
	for _, f := range documents(unit.Snapshot) {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := string(f.Content)
		for _, old := range t.order {
			for _, at := range findWord(text, old) {
				sp := source.Span{File: f.ID, Start: offset(at), End: offset(at + len(old))}
				msg := fmt.Sprintf("deprecated term %q, use %q", old, t.rename[old])
				r.Report(diag.NewWarning(CodeDeprecatedTerm, sp, msg))
			}
		}
	}
	return nil
}

// termsFixer renames one occurrence per action. It has no bulk form.
type termsFixer struct {
	terms *terms
}

func (*termsFixer) Name() string              { return "terms" }
func (*termsFixer) FixableCodes() []diag.Code { return []diag.Code{CodeDeprecatedTerm} }

func (f *termsFixer) Actions(_ context.Context, d diag.Diagnostic, fc provider.FixContext) ([]provider.Action, error) {
	origin := fc.Origin
	if origin == nil {
		origin = fc.Current
	}
	file, ok := origin.Get(d.Primary.File)
	if !ok || !origin.Contains(d.Primary) {
		return nil, fmt.Errorf("%s: span %s out of range", d.Code, d.Primary)
	}
	old := string(file.Content[d.Primary.Start:d.Primary.End])
	repl, ok := f.terms.rename[old]
	if !ok {
		return nil, nil
	}
	path, line, col, err := originLine(d, fc)
	if err != nil {
		return nil, err
	}
	// вхождения правее исходного не сдвигаются: категория идёт слева направо
	fromEnd := 0
	for _, at := range findWord(file.GetLine(line), old) {
		if at >= int(col)-1 {
			fromEnd++
		}
	}
	cur, start, end, err := currentLine(fc, path, line)
	if err != nil {
		return nil, err
	}
	hits := findWord(string(cur.Content[start:end]), old)
	if fromEnd == 0 || fromEnd > len(hits) {
		return nil, fmt.Errorf("%s:%d: %w", path, line, errTermGone)
	}
	at := start + offset(hits[len(hits)-fromEnd])
	sp := source.Span{File: cur.ID, Start: at, End: at + offset(len(old))}
	return []provider.Action{fix.ReplaceSpan(fmt.Sprintf("Rename '%s' to '%s'", old, repl), sp, repl, old)}, nil
}

// findWord returns the byte offsets of whole-word occurrences of word in s.
func findWord(s, word string) []int {
	var out []int
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			break
		}
		at := from + i
		if wordBoundary(s, at, at+len(word)) {
			out = append(out, at)
			from = at + len(word)
			continue
		}
		from = at + 1
	}
	return out
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
