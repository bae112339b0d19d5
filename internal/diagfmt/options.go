package diagfmt

import (
	"path"
	"path/filepath"

	"bulkfix/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// display renders the path of f as m asks. Artifact paths are stored
// relative to the snapshot base unless they lie outside it.
func (m PathMode) display(f *source.File, snap *source.Snapshot) string {
	switch m {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(snap.AbsPath(f.Path)); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeBasename:
		return path.Base(f.Path)
	case PathModeAuto:
		// длинные абсолютные пути сокращаем до имени файла
		if len(f.Path) >= 40 && path.IsAbs(f.Path) {
			return path.Base(f.Path)
		}
	}
	return f.Path
}

// PrettyOpts configures pretty-printing of diagnostics and outcomes.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
	// Snippet prints the offending line with a caret underline.
	Snippet bool
	// Timings appends phase durations to outcome output.
	Timings bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}
