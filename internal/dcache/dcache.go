// Package dcache persists collected diagnostics on disk so an unchanged
// project does not have to be compiled and analyzed again.
package dcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"bulkfix/internal/diag"
	"bulkfix/internal/source"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Key identifies one collection result.
type Key [32]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// KeyFor derives a cache key from the snapshot contents, the analyzers that
// ran and the category filter. Analyzer order matters since it decides the
// order of reported diagnostics.
func KeyFor(snap *source.Snapshot, analyzers []string, filter diag.CodeSet) Key {
	h := sha256.New()
	digest := snap.Digest()
	h.Write(digest[:])
	for _, name := range analyzers {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	h.Write([]byte{0xff})
	for _, c := range filter.Sorted() {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Cache хранит диагностики по Key на диске.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the on-disk form of one collection result.
type Payload struct {
	Schema      uint16
	Diagnostics []Entry
}

// Entry is a serialized diagnostic.
type Entry struct {
	Code     string
	Severity uint8
	Message  string
	File     uint32
	Start    uint32
	End      uint32
	Notes    []NoteEntry `msgpack:",omitempty"`
}

// NoteEntry is a serialized diagnostic note.
type NoteEntry struct {
	File  uint32
	Start uint32
	End   uint32
	Msg   string
}

// Open initializes a cache at the standard location for app.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes a cache rooted at dir.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Key) string {
	return filepath.Join(c.dir, "diags", key.String()+".mp")
}

// Put stores diagnostics under key.
func (c *Cache) Put(key Key, diags []diag.Diagnostic) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(toPayload(diags)); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get loads diagnostics stored under key. A payload written by another
// schema version counts as a miss.
func (c *Cache) Get(key Key) ([]diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != schemaVersion {
		return nil, false, nil
	}
	return fromPayload(&payload), true, nil
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// Keys lists the stored keys, sorted. Used by tooling and tests.
func (c *Cache) Keys() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, err := os.ReadDir(filepath.Join(c.dir, "diags"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".mp" {
			keys = append(keys, name[:len(name)-len(".mp")])
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func toPayload(diags []diag.Diagnostic) *Payload {
	payload := &Payload{Schema: schemaVersion, Diagnostics: make([]Entry, len(diags))}
	for i, d := range diags {
		e := Entry{
			Code:     string(d.Code),
			Severity: uint8(d.Severity),
			Message:  d.Message,
			File:     uint32(d.Primary.File),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			e.Notes = append(e.Notes, NoteEntry{File: uint32(n.Span.File), Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		payload.Diagnostics[i] = e
	}
	return payload
}

func fromPayload(payload *Payload) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(payload.Diagnostics))
	for i, e := range payload.Diagnostics {
		d := diag.Diagnostic{
			Code:     diag.Code(e.Code),
			Severity: diag.Severity(e.Severity),
			Message:  e.Message,
			Primary:  source.Span{File: source.FileID(e.File), Start: e.Start, End: e.End},
		}
		for _, n := range e.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: source.FileID(n.File), Start: n.Start, End: n.End},
				Msg:  n.Msg,
			})
		}
		out[i] = d
	}
	return out
}
