package source

type (
	// FileID uniquely identifies an artifact within a snapshot lineage.
	// IDs stay stable when a snapshot is derived from another one.
	FileID uint32 // просто ID артефакта
	// FileFlags encodes metadata about a source artifact.
	FileFlags uint8 // метаданные
	// Kind distinguishes source documents from project configuration.
	Kind uint8
)

// NoFileID marks a span that does not point into any artifact.
const NoFileID FileID = ^FileID(0)

const (
	// FileVirtual indicates the artifact was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
)

const (
	// KindDocument is a source document that analyzers inspect.
	KindDocument Kind = iota
	// KindConfig is project configuration (manifest and the like).
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindConfig:
		return "config"
	}
	return "unknown"
}

// File captures metadata and content for a single artifact.
// A File is never modified after it has been added to a snapshot.
type File struct {
	ID      FileID
	Path    string
	Kind    Kind
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
