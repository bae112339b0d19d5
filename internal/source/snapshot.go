package source

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// ErrUnknownArtifact is returned when a derivation names a path the snapshot
// does not contain.
var ErrUnknownArtifact = errors.New("unknown artifact")

// Snapshot is an immutable, versioned view of all project artifacts.
// Deriving a snapshot (WithContent, WithChanges) never touches the receiver,
// so any intermediate state can be kept and inspected.
type Snapshot struct {
	version uint64
	baseDir string            // корень проекта, пути артефактов относительны ему
	files   []*File           // порядок добавления, индекс = FileID
	index   map[string]FileID // path -> id
}

// Builder assembles the first version of a snapshot.
type Builder struct {
	baseDir string
	files   []*File
	index   map[string]FileID
}

// NewBuilder creates a builder whose artifact paths are relative to baseDir.
func NewBuilder(baseDir string) *Builder {
	return &Builder{
		baseDir: baseDir,
		files:   make([]*File, 0),
		index:   make(map[string]FileID),
	}
}

// Add stores an artifact from normalized bytes, computes LineIdx and Hash,
// and returns its FileID. Adding an existing path replaces its content and
// keeps the FileID, so one path never maps to two contents.
func (b *Builder) Add(path string, content []byte, kind Kind, flags FileFlags) FileID {
	normalizedPath := NormalizePath(path)
	if id, ok := b.index[normalizedPath]; ok {
		b.files[id] = newFile(id, normalizedPath, kind, content, flags)
		return id
	}

	lenFiles, err := safecast.Conv[uint32](len(b.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	b.files = append(b.files, newFile(id, normalizedPath, kind, content, flags))
	b.index[normalizedPath] = id
	return id
}

// AddVirtual adds an in-memory document with the FileVirtual flag.
func (b *Builder) AddVirtual(name string, content []byte) FileID {
	return b.Add(name, content, KindDocument, FileVirtual)
}

// Load reads an artifact from disk, normalizes CRLF/BOM, and calls Add.
// Relative paths are resolved against the builder's base directory; the
// artifact is keyed by its path relative to that directory.
func (b *Builder) Load(path string, kind Kind) (FileID, error) {
	full := path
	if !filepath.IsAbs(full) && b.baseDir != "" {
		full = filepath.Join(b.baseDir, path)
	}
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(full)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}

	key := path
	if b.baseDir != "" {
		if rel, relErr := relativeTo(full, b.baseDir); relErr == nil {
			key = rel
		}
	}
	return b.Add(key, content, kind, flags), nil
}

// Snapshot freezes the builder contents into version 1 of a snapshot.
// The builder may keep being used; later additions do not leak into
// snapshots that were already produced.
func (b *Builder) Snapshot() *Snapshot {
	files := make([]*File, len(b.files))
	copy(files, b.files)
	index := make(map[string]FileID, len(b.index))
	for k, v := range b.index {
		index[k] = v
	}
	return &Snapshot{
		version: 1,
		baseDir: b.baseDir,
		files:   files,
		index:   index,
	}
}

func newFile(id FileID, path string, kind Kind, content []byte, flags FileFlags) *File {
	owned := append([]byte(nil), content...)
	return &File{
		ID:      id,
		Path:    path,
		Kind:    kind,
		Content: owned,
		LineIdx: buildLineIndex(owned),
		Hash:    sha256.Sum256(owned),
		Flags:   flags,
	}
}

// Version increases by one with every derivation.
func (s *Snapshot) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// BaseDir возвращает корень проекта.
func (s *Snapshot) BaseDir() string {
	return s.baseDir
}

// Len returns the number of artifacts.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.files)
}

// Files returns the artifacts in insertion order. The slice is a copy; the
// files themselves must be treated as read-only.
func (s *Snapshot) Files() []*File {
	out := make([]*File, len(s.files))
	copy(out, s.files)
	return out
}

// Get returns the artifact for the given ID.
func (s *Snapshot) Get(id FileID) (*File, bool) {
	if s == nil || id == NoFileID || int(id) >= len(s.files) {
		return nil, false
	}
	return s.files[id], true
}

// Lookup returns the artifact stored under path.
func (s *Snapshot) Lookup(path string) (*File, bool) {
	if s == nil {
		return nil, false
	}
	id, ok := s.index[NormalizePath(path)]
	if !ok {
		return nil, false
	}
	return s.files[id], true
}

// Content returns the content stored under path.
func (s *Snapshot) Content(path string) ([]byte, bool) {
	f, ok := s.Lookup(path)
	if !ok {
		return nil, false
	}
	return f.Content, true
}

// AbsPath returns the on-disk location of an artifact path.
func (s *Snapshot) AbsPath(path string) string {
	if filepath.IsAbs(path) || s.baseDir == "" {
		return filepath.FromSlash(path)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(path))
}

// Contains reports whether span lies inside one of the snapshot's artifacts.
func (s *Snapshot) Contains(span Span) bool {
	if !span.IsValid() {
		return false
	}
	f, ok := s.Get(span.File)
	if !ok {
		return false
	}
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return false
	}
	return span.End <= n
}

// Resolve converts a span into line and column positions.
func (s *Snapshot) Resolve(span Span) (start, end LineCol, ok bool) {
	if !s.Contains(span) {
		return LineCol{}, LineCol{}, false
	}
	f := s.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End), true
}

// Digest hashes artifact paths and contents in insertion order.
func (s *Snapshot) Digest() [32]byte {
	h := sha256.New()
	for _, f := range s.files {
		h.Write([]byte(f.Path))
		h.Write([]byte{0, byte(f.Kind)})
		h.Write(f.Hash[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// WithContent derives a snapshot where path holds content.
func (s *Snapshot) WithContent(path string, content []byte) (*Snapshot, error) {
	return s.WithChanges(map[string][]byte{path: content})
}

// WithChanges derives a snapshot with several artifacts replaced at once.
// Only existing artifacts can change. When no content actually differs the
// receiver itself is returned.
func (s *Snapshot) WithChanges(changes map[string][]byte) (*Snapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	var files []*File
	for path, content := range changes {
		id, ok := s.index[NormalizePath(path)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, path)
		}
		old := s.files[id]
		if bytes.Equal(old.Content, content) {
			continue
		}
		if files == nil {
			files = make([]*File, len(s.files))
			copy(files, s.files)
		}
		files[id] = newFile(id, old.Path, old.Kind, content, old.Flags)
	}
	if files == nil {
		return s, nil
	}
	return &Snapshot{
		version: s.version + 1,
		baseDir: s.baseDir,
		files:   files,
		index:   s.index, // набор путей не меняется, индекс можно делить
	}, nil
}

// Diff lists the paths whose content differs between prev and next, in next's
// artifact order. Artifacts missing from prev count as changed.
func Diff(prev, next *Snapshot) []string {
	if next == nil || prev == next {
		return nil
	}
	changed := make([]string, 0)
	for _, f := range next.files {
		old, ok := prev.Lookup(f.Path)
		if !ok || old.Hash != f.Hash {
			changed = append(changed, f.Path)
		}
	}
	return changed
}

// Encoded returns the content as it should be written back to disk, with the
// BOM and CRLF line endings restored when the original had them.
func (f *File) Encoded() []byte {
	out := f.Content
	if f.Flags&FileNormalizedCRLF != 0 {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	if f.Flags&FileHadBOM != 0 {
		out = append([]byte{0xEF, 0xBB, 0xBF}, out...)
	}
	return out
}

// LineCount returns the number of lines, counting a trailing partial line.
func (f *File) LineCount() int {
	n := len(f.LineIdx)
	if len(f.Content) == 0 {
		return 0
	}
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// LineBounds returns the byte range [start, end) of the given 1-based line,
// excluding the line terminator. A \r before the \n counts as part of the
// terminator, which matters for files with mixed line endings.
func (f *File) LineBounds(lineNum uint32) (start, end uint32, ok bool) {
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return 0, 0, false
	}
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		return 0, 0, false
	}
	if lineNum == 0 {
		return 0, 0, false
	}
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return 0, 0, false
	}
	if lineNum-1 < lenLineIdx {
		end = f.LineIdx[lineNum-1]
		if end > start && f.Content[end-1] == '\r' {
			end--
		}
	} else {
		end = lenContent
	}
	if start > lenContent || (lineNum > 1 && start == lenContent && lineNum-1 >= lenLineIdx) {
		return 0, 0, false
	}
	return start, end, true
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	start, end, ok := f.LineBounds(lineNum)
	if !ok {
		return ""
	}
	return string(f.Content[start:end])
}

// Position converts a byte offset into a line/column pair.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}
