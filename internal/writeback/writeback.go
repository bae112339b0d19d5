// Package writeback persists fixed artifacts.
package writeback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Writer overwrites one artifact. Writes are independent: a failed write
// does not undo earlier ones.
type Writer interface {
	Write(ctx context.Context, path string, content []byte) error
}

// WriteError reports a failed artifact write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ErrLockTimeout is returned when an artifact stays locked by another process.
var ErrLockTimeout = errors.New("artifact is locked by another process")

const defaultLockTimeout = 5 * time.Second

// DiskWriter rewrites artifacts in place under an exclusive file lock,
// keeping their permissions. It never creates files.
type DiskWriter struct {
	// BaseDir resolves relative artifact paths.
	BaseDir     string
	LockTimeout time.Duration
}

func (w DiskWriter) resolve(path string) string {
	if filepath.IsAbs(path) || w.BaseDir == "" {
		return filepath.FromSlash(path)
	}
	return filepath.Join(w.BaseDir, filepath.FromSlash(path))
}

func (w DiskWriter) Write(ctx context.Context, path string, content []byte) error {
	full := w.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &WriteError{Path: path, Err: fmt.Errorf("not a regular file")}
	}

	unlock, err := w.lock(ctx, full)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer unlock()

	if err := os.WriteFile(full, content, info.Mode().Perm()); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// lock acquires an exclusive lock on the artifact itself.
func (w DiskWriter) lock(ctx context.Context, full string) (unlock func(), err error) {
	timeout := w.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	fl := flock.New(full)
	lockCtx, cancel := context.WithTimeout(ctx, timeout)

	locked, err := fl.TryLockContext(lockCtx, 50*time.Millisecond)
	if !locked || err != nil {
		cancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ErrLockTimeout
	}

	return func() {
		_ = fl.Unlock()
		cancel()
	}, nil
}

// Recorder keeps writes in memory. Paths listed in Fail are rejected.
type Recorder struct {
	mu     sync.Mutex
	writes map[string][]byte
	order  []string
	Fail   map[string]error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{writes: make(map[string][]byte)}
}

func (r *Recorder) Write(_ context.Context, path string, content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Fail[path]; ok {
		return &WriteError{Path: path, Err: err}
	}
	if r.writes == nil {
		r.writes = make(map[string][]byte)
	}
	if _, seen := r.writes[path]; !seen {
		r.order = append(r.order, path)
	}
	r.writes[path] = append([]byte(nil), content...)
	return nil
}

// Written returns the written paths in write order.
func (r *Recorder) Written() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Content returns what was written to path.
func (r *Recorder) Content(path string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.writes[path]
	return data, ok
}

// Len returns the number of distinct written paths.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

// Sorted returns written paths in lexical order.
func (r *Recorder) Sorted() []string {
	out := r.Written()
	sort.Strings(out)
	return out
}
