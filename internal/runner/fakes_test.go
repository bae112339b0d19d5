package runner

import (
	"context"
	"strings"

	"bulkfix/internal/compile"
	"bulkfix/internal/diag"
	"bulkfix/internal/fix"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// wordAnalyzer reports code at every occurrence of word.
type wordAnalyzer struct {
	name string
	code diag.Code
	word string
}

func (a wordAnalyzer) Name() string       { return a.name }
func (a wordAnalyzer) Codes() []diag.Code { return []diag.Code{a.code} }
func (a wordAnalyzer) Analyze(_ context.Context, unit *compile.Unit, r diag.Reporter) error {
	for _, f := range unit.Snapshot.Files() {
		text := string(f.Content)
		for off := 0; ; {
			i := strings.Index(text[off:], a.word)
			if i < 0 {
				break
			}
			start := uint32(off + i)
			sp := source.Span{File: f.ID, Start: start, End: start + uint32(len(a.word))}
			r.Report(diag.NewWarning(a.code, sp, "found "+a.word))
			off += i + len(a.word)
		}
	}
	return nil
}

// variant is one remedy a wordFixer offers: replace the flagged word.
type variant struct {
	title, key, replacement string
}

// wordFixer offers guarded replacements of the flagged span.
type wordFixer struct {
	name     string
	code     diag.Code
	word     string
	variants []variant
	// bulk enables a bulk form that replaces every occurrence of word.
	bulk bool
	// onOffer runs before every offer.
	onOffer func(fc provider.FixContext)
}

func (f *wordFixer) Name() string              { return f.name }
func (f *wordFixer) FixableCodes() []diag.Code { return []diag.Code{f.code} }
func (f *wordFixer) Actions(_ context.Context, d diag.Diagnostic, fc provider.FixContext) ([]provider.Action, error) {
	if f.onOffer != nil {
		f.onOffer(fc)
	}
	actions := make([]provider.Action, 0, len(f.variants))
	for _, v := range f.variants {
		actions = append(actions, fix.ReplaceSpan(v.title, d.Primary, v.replacement, f.word, fix.WithVariant(v.key)))
	}
	return actions, nil
}

// bulkWordFixer is a wordFixer with a bulk form.
type bulkWordFixer struct {
	*wordFixer
}

func (f bulkWordFixer) Bulk(diag.Code) provider.BulkFixer {
	return provider.BulkFunc(func(_ context.Context, _ diag.Code, key string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error) {
		replacement := ""
		for _, v := range f.variants {
			if v.key == key {
				replacement = v.replacement
			}
		}
		changes := make(map[string][]byte)
		for _, d := range diags {
			file, _ := snap.Get(d.Primary.File)
			changes[file.Path] = []byte(strings.ReplaceAll(string(file.Content), f.word, replacement))
		}
		return snap.WithChanges(changes)
	})
}

func snapshotOf(files ...string) *source.Snapshot {
	b := source.NewBuilder("")
	for i := 0; i+1 < len(files); i += 2 {
		b.AddVirtual(files[i], []byte(files[i+1]))
	}
	return b.Snapshot()
}

func registry(analyzers []provider.Analyzer, fixers ...provider.Fixer) *provider.Registry {
	reg := provider.NewRegistry()
	for _, a := range analyzers {
		if err := reg.RegisterAnalyzer(a); err != nil {
			panic(err)
		}
	}
	for _, f := range fixers {
		if err := reg.RegisterFixer(f); err != nil {
			panic(err)
		}
	}
	return reg
}
