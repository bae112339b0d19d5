// Package builtin provides the text-level analyzers and fixers shipped with
// bulkfix. They are ordinary providers; the pipeline knows nothing special
// about them.
package builtin

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"bulkfix/internal/diag"
	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// Категории встроенных диагностик.
const (
	CodeTrailingWhitespace diag.Code = "WS001"
	CodeFinalNewline       diag.Code = "WS002"
	CodeTabIndent          diag.Code = "WS003"
	CodeDeprecatedTerm     diag.Code = "TX001"
	CodeLineTooLong        diag.Code = "LN001"
)

// DefaultTabWidth is used when Config.TabWidth is not set.
const DefaultTabWidth = 4

// Config parameterizes the built-in providers.
type Config struct {
	TabWidth int
	// MaxLine is the longest allowed line in display columns; 0 disables LN001.
	MaxLine int
	// Rename maps deprecated terms to their replacements.
	Rename map[string]string
}

func (c Config) tabWidth() int {
	if c.TabWidth <= 0 {
		return DefaultTabWidth
	}
	return c.TabWidth
}

// altTabWidth is the second indentation variant offered for WS003.
func (c Config) altTabWidth() int {
	if c.tabWidth() == 2 {
		return 4
	}
	return 2
}

// Register adds every built-in analyzer and fixer to reg.
func Register(reg *provider.Registry, cfg Config) error {
	ws := &whitespace{cfg: cfg}
	terms := newTerms(cfg.Rename)
	analyzers := []provider.Analyzer{ws, terms}
	if cfg.MaxLine > 0 {
		analyzers = append(analyzers, &lineLength{max: cfg.MaxLine})
	}
	for _, a := range analyzers {
		if err := reg.RegisterAnalyzer(a); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	for _, f := range []provider.Fixer{&whitespaceFixer{cfg: cfg}, &termsFixer{terms: terms}} {
		if err := reg.RegisterFixer(f); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}

// Codes lists every category the built-in providers can report.
func Codes() []diag.Code {
	codes := []diag.Code{CodeTrailingWhitespace, CodeFinalNewline, CodeTabIndent, CodeDeprecatedTerm, CodeLineTooLong}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func offset(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}

// documents returns the artifacts analyzers look at.
func documents(snap *source.Snapshot) []*source.File {
	out := make([]*source.File, 0, snap.Len())
	for _, f := range snap.Files() {
		if f.Kind == source.KindDocument {
			out = append(out, f)
		}
	}
	return out
}
