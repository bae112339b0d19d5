package fix

import (
	"context"
	"strings"

	"bulkfix/internal/diag"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

type offerFunc func(d diag.Diagnostic, fc provider.FixContext) ([]provider.Action, error)

type fakeFixer struct {
	name   string
	codes  []diag.Code
	offer  offerFunc
	offers int
}

func (f *fakeFixer) Name() string              { return f.name }
func (f *fakeFixer) FixableCodes() []diag.Code { return f.codes }
func (f *fakeFixer) Actions(_ context.Context, d diag.Diagnostic, fc provider.FixContext) ([]provider.Action, error) {
	f.offers++
	return f.offer(d, fc)
}

// bulkFakeFixer adds a bulk form for every declared code.
type bulkFakeFixer struct {
	*fakeFixer
	fixAll provider.BulkFunc
	calls  int
}

func (f *bulkFakeFixer) Bulk(diag.Code) provider.BulkFixer {
	if f.fixAll == nil {
		return nil
	}
	return provider.BulkFunc(func(ctx context.Context, code diag.Code, variant string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error) {
		f.calls++
		return f.fixAll(ctx, code, variant, diags, snap)
	})
}

// replaceOffer offers one guarded replacement per (title, variant, text)
// triple, rewriting the diagnostic's span.
func replaceOffer(old string, variants ...[3]string) offerFunc {
	return func(d diag.Diagnostic, _ provider.FixContext) ([]provider.Action, error) {
		actions := make([]provider.Action, 0, len(variants))
		for _, v := range variants {
			actions = append(actions, ReplaceSpan(v[0], d.Primary, v[2], old, WithVariant(v[1])))
		}
		return actions, nil
	}
}

// replaceAllBulk rewrites every occurrence of old in the diagnostics' files.
func replaceAllBulk(old string, byVariant map[string]string) provider.BulkFunc {
	return func(_ context.Context, _ diag.Code, variant string, diags []diag.Diagnostic, snap *source.Snapshot) (*source.Snapshot, error) {
		changes := make(map[string][]byte)
		for _, d := range diags {
			f, _ := snap.Get(d.Primary.File)
			changes[f.Path] = []byte(strings.ReplaceAll(string(f.Content), old, byVariant[variant]))
		}
		return snap.WithChanges(changes)
	}
}

// occurrences reports a diagnostic for every occurrence of word.
func occurrences(snap *source.Snapshot, code diag.Code, word string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range snap.Files() {
		text := string(f.Content)
		for off := 0; ; {
			i := strings.Index(text[off:], word)
			if i < 0 {
				break
			}
			start := uint32(off + i)
			out = append(out, diag.NewWarning(code, source.Span{File: f.ID, Start: start, End: start + uint32(len(word))}, "found "+word))
			off += i + len(word)
		}
	}
	return out
}
