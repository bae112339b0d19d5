package source

import "fmt"

// Span is a half-open byte range [Start, End) in one artifact.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// NoSpan is the span of a diagnostic that has no location in source.
var NoSpan = Span{File: NoFileID}

// IsValid reports whether the span points into some artifact.
func (s Span) IsValid() bool {
	return s.File != NoFileID && s.Start <= s.End
}

func (s Span) String() string {
	if s.File == NoFileID {
		return "-"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Overlaps reports whether two spans share bytes. An empty span is an
// insertion point: it overlaps a non-empty span in [Start, End) and never
// another empty span.
func (s Span) Overlaps(o Span) bool {
	if s.File != o.File {
		return false
	}
	switch sEmpty, oEmpty := s.Start == s.End, o.Start == o.End; {
	case sEmpty && oEmpty:
		return false
	case sEmpty:
		return o.Start <= s.Start && s.Start < o.End
	case oEmpty:
		return s.Start <= o.Start && o.Start < s.End
	}
	return s.Start < o.End && o.Start < s.End
}
