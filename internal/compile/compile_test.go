package compile

import (
	"context"
	"errors"
	"testing"

	"bulkfix/internal/source"
)

func TestDefaultCompilesDocuments(t *testing.T) {
	b := source.NewBuilder("")
	b.AddVirtual("a.txt", []byte("one\ntwo"))
	b.Add("bulkfix.toml", []byte("[project]\n"), source.KindConfig, 0)
	snap := b.Snapshot()

	unit, err := Default.Compile(context.Background(), snap)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if unit.Snapshot != snap {
		t.Fatalf("unit must reference its snapshot")
	}
	doc, ok := unit.Document("a.txt")
	if !ok {
		t.Fatalf("document a.txt missing")
	}
	if len(doc.Lines) != 2 || doc.Lines[0] != "one" || doc.Lines[1] != "two" {
		t.Fatalf("unexpected lines: %q", doc.Lines)
	}
	if cfg, ok := unit.Document("bulkfix.toml"); !ok || cfg.Kind != source.KindConfig {
		t.Fatalf("config artifact missing or wrong kind: %+v", cfg)
	}
}

func TestDefaultRejectsInvalidUTF8(t *testing.T) {
	b := source.NewBuilder("")
	b.AddVirtual("ok.txt", []byte("fine\n"))
	b.AddVirtual("bad.txt", []byte("ab\xffc"))

	_, err := Default.Compile(context.Background(), b.Snapshot())
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *compile.Error, got %v", err)
	}
	if cerr.Path != "bad.txt" || cerr.Offset != 2 {
		t.Fatalf("unexpected error location: %+v", cerr)
	}
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8 in chain, got %v", err)
	}
}

func TestDefaultHonoursCancellation(t *testing.T) {
	b := source.NewBuilder("")
	b.AddVirtual("a.txt", []byte("x\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Default.Compile(ctx, b.Snapshot()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
