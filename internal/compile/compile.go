// Package compile turns a project snapshot into the unit analyzers inspect.
package compile

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"bulkfix/internal/source"
)

// Document is one analyzable artifact of a compiled unit.
type Document struct {
	ID    source.FileID
	Path  string
	Kind  source.Kind
	Lines []string // без символов перевода строки
}

// Unit is the compiled form of a snapshot. It keeps a reference to the
// snapshot it was produced from, so analyzers can report spans against it.
type Unit struct {
	Snapshot  *source.Snapshot
	Documents []Document
}

// Document returns the compiled document for path.
func (u *Unit) Document(path string) (*Document, bool) {
	if u == nil {
		return nil, false
	}
	norm := source.NormalizePath(path)
	for i := range u.Documents {
		if u.Documents[i].Path == norm {
			return &u.Documents[i], true
		}
	}
	return nil, false
}

// Compiler is the external compilation step.
type Compiler interface {
	Compile(ctx context.Context, snap *source.Snapshot) (*Unit, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, snap *source.Snapshot) (*Unit, error)

func (f CompilerFunc) Compile(ctx context.Context, snap *source.Snapshot) (*Unit, error) {
	return f(ctx, snap)
}

// Error reports that a snapshot could not be compiled.
type Error struct {
	Path   string
	Offset uint32
	Err    error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("compile: %v", e.Err)
	}
	return fmt.Sprintf("compile %s@%d: %v", e.Path, e.Offset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrInvalidUTF8 is wrapped by Default when a document is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Default is the built-in compiler. Documents must be valid UTF-8; config
// artifacts are passed through untouched.
var Default Compiler = CompilerFunc(compileSnapshot)

func compileSnapshot(ctx context.Context, snap *source.Snapshot) (*Unit, error) {
	if snap == nil {
		return nil, &Error{Err: fmt.Errorf("snapshot is nil")}
	}
	unit := &Unit{Snapshot: snap, Documents: make([]Document, 0, snap.Len())}
	for _, f := range snap.Files() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.Kind == source.KindDocument {
			if off, ok := firstInvalidUTF8(f.Content); !ok {
				return nil, &Error{Path: f.Path, Offset: off, Err: ErrInvalidUTF8}
			}
		}
		doc := Document{ID: f.ID, Path: f.Path, Kind: f.Kind}
		n := f.LineCount()
		doc.Lines = make([]string, 0, n)
		for line := uint32(1); int(line) <= n; line++ {
			doc.Lines = append(doc.Lines, f.GetLine(line))
		}
		unit.Documents = append(unit.Documents, doc)
	}
	return unit, nil
}

func firstInvalidUTF8(b []byte) (uint32, bool) {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				off = ^uint32(0)
			}
			return off, false
		}
		i += size
	}
	return 0, true
}
