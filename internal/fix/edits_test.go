package fix

import (
	"context"
	"errors"
	"testing"

	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

func virtualSnapshot(files ...string) *source.Snapshot {
	b := source.NewBuilder("")
	for i := 0; i+1 < len(files); i += 2 {
		b.AddVirtual(files[i], []byte(files[i+1]))
	}
	return b.Snapshot()
}

func content(t *testing.T, snap *source.Snapshot, path string) string {
	t.Helper()
	data, ok := snap.Content(path)
	if !ok {
		t.Fatalf("artifact %s missing", path)
	}
	return string(data)
}

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		edits   []TextEdit
		want    string
		wantErr error
	}{
		{
			name:  "replace and insert keep offsets",
			input: "let x = 1",
			edits: []TextEdit{
				{Span: source.Span{Start: 0, End: 3}, NewText: "const", OldText: "let"},
				{Span: source.Span{Start: 9, End: 9}, NewText: ";"},
			},
			want: "const x = 1;",
		},
		{
			name:  "inserts at one position keep order",
			input: "ab",
			edits: []TextEdit{
				{Span: source.Span{Start: 1, End: 1}, NewText: "("},
				{Span: source.Span{Start: 1, End: 1}, NewText: ")"},
			},
			want: "a()b",
		},
		{
			name:  "overlap rejected",
			input: "abcdef",
			edits: []TextEdit{
				{Span: source.Span{Start: 0, End: 3}, NewText: "x"},
				{Span: source.Span{Start: 2, End: 4}, NewText: "y"},
			},
			wantErr: ErrEditConflict,
		},
		{
			name:    "stale guard rejected",
			input:   "let x",
			edits:   []TextEdit{{Span: source.Span{Start: 0, End: 3}, NewText: "var", OldText: "val"}},
			wantErr: ErrStaleEdit,
		},
		{
			name:    "out of range",
			input:   "ab",
			edits:   []TextEdit{{Span: source.Span{Start: 1, End: 5}}},
			wantErr: ErrEditRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := virtualSnapshot("a.txt", tt.input)
			next, err := ApplyEdits(snap, tt.edits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if got := content(t, next, "a.txt"); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if got := content(t, snap, "a.txt"); got != tt.input {
				t.Fatalf("original snapshot changed: %q", got)
			}
		})
	}
}

func TestApplyEditsAcrossFiles(t *testing.T) {
	snap := virtualSnapshot("a.txt", "one", "b.txt", "two")
	next, err := ApplyEdits(snap, []TextEdit{
		{Span: source.Span{File: 1, Start: 0, End: 3}, NewText: "TWO"},
		{Span: source.Span{File: 0, Start: 0, End: 3}, NewText: "ONE"},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if content(t, next, "a.txt") != "ONE" || content(t, next, "b.txt") != "TWO" {
		t.Fatalf("unexpected contents")
	}
	if next.Version() != snap.Version()+1 {
		t.Fatalf("expected a single derivation, got version %d", next.Version())
	}
}

func TestBuilders(t *testing.T) {
	snap := virtualSnapshot("a.txt", "let x = 1;")
	ctx := context.Background()

	tests := []struct {
		name   string
		action func() (string, error)
		want   string
	}{
		{"insert", func() (string, error) {
			return run(ctx, snap, InsertText("Add mut", source.Span{Start: 4, End: 4}, "mut ", ""))
		}, "let mut x = 1;"},
		{"delete", func() (string, error) {
			return run(ctx, snap, DeleteSpan("Remove semicolon", source.Span{Start: 9, End: 10}, ";"))
		}, "let x = 1"},
		{"replace", func() (string, error) {
			return run(ctx, snap, ReplaceSpan("Use const", source.Span{Start: 0, End: 3}, "const", "let"))
		}, "const x = 1;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.action()
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuilderOptions(t *testing.T) {
	a := ReplaceSpan("Use const", source.Span{}, "const", "", WithVariant("const"), nil)
	if a.Key() != "const" || a.Title != "Use const" {
		t.Fatalf("unexpected action %q/%q", a.Title, a.Key())
	}
	if plain := DeleteSpan("Remove", source.Span{}, ""); plain.Key() != "Remove" {
		t.Fatalf("key must default to title, got %q", plain.Key())
	}
}

func TestEditActionHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := InsertText("x", source.Span{}, "x", "")
	if _, err := a.Apply(ctx, virtualSnapshot("a.txt", "")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func run(ctx context.Context, snap *source.Snapshot, a provider.Action) (string, error) {
	next, err := a.Apply(ctx, snap)
	if err != nil {
		return "", err
	}
	data, _ := next.Content("a.txt")
	return string(data), nil
}
