package writeback

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestDiskWriterOverwritesAndKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.sh")
	if err := os.WriteFile(path, []byte("echo hi  \n"), 0o750); err != nil {
		t.Fatal(err)
	}

	w := DiskWriter{BaseDir: dir}
	if err := w.Write(context.Background(), "script.sh", []byte("echo hi\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "echo hi\n" {
		t.Fatalf("content = %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o750 {
		t.Fatalf("mode = %v, want 0750", info.Mode().Perm())
	}
}

func TestDiskWriterNeverCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	err := DiskWriter{BaseDir: dir}.Write(context.Background(), "missing.txt", []byte("x"))
	var werr *WriteError
	if !errors.As(err, &werr) || werr.Path != "missing.txt" || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected WriteError wrapping ErrNotExist, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "missing.txt")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("file must not be created")
	}
}

func TestDiskWriterLockTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	held := flock.New(path)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take lock: %v", err)
	}
	defer func() { _ = held.Unlock() }()

	w := DiskWriter{BaseDir: dir, LockTimeout: 150 * time.Millisecond}
	err = w.Write(context.Background(), "a.txt", []byte("b"))
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a" {
		t.Fatalf("locked file must not change, got %q", data)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Fail = map[string]error{"bad.txt": errors.New("disk full")}
	ctx := context.Background()

	if err := r.Write(ctx, "b.txt", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := r.Write(ctx, "a.txt", []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := r.Write(ctx, "b.txt", []byte("3")); err != nil {
		t.Fatal(err)
	}
	var werr *WriteError
	if err := r.Write(ctx, "bad.txt", nil); !errors.As(err, &werr) {
		t.Fatalf("expected WriteError, got %v", err)
	}

	if got := r.Written(); len(got) != 2 || got[0] != "b.txt" || got[1] != "a.txt" {
		t.Fatalf("Written = %v", got)
	}
	if data, _ := r.Content("b.txt"); string(data) != "3" {
		t.Fatalf("last write must win, got %q", data)
	}
	if got := r.Sorted(); got[0] != "a.txt" {
		t.Fatalf("Sorted = %v", got)
	}
}
