package fix

import (
	"errors"
	"fmt"
	"sort"

	"bulkfix/internal/source"
)

var (
	// ErrEditConflict is returned when two edits of one action overlap.
	ErrEditConflict = errors.New("overlapping edits")
	// ErrStaleEdit is returned when the text under an edit no longer matches
	// its OldText guard.
	ErrStaleEdit = errors.New("existing text does not match expected content")
	// ErrEditRange is returned when an edit points outside its artifact.
	ErrEditRange = errors.New("edit span out of range")
)

// TextEdit replaces the bytes under Span with NewText. A non-empty OldText
// guards the edit: it applies only when the current bytes equal OldText.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// ApplyEdits applies edits to snap and derives a new snapshot. Spans are
// interpreted against snap. Either every edit applies or none does.
func ApplyEdits(snap *source.Snapshot, edits []TextEdit) (*source.Snapshot, error) {
	if snap == nil {
		return nil, fmt.Errorf("fix: snapshot is nil")
	}
	if len(edits) == 0 {
		return snap, nil
	}

	buckets, order := groupEditsByFile(edits)
	changes := make(map[string][]byte, len(buckets))
	for _, fileID := range order {
		file, ok := snap.Get(fileID)
		if !ok {
			return nil, fmt.Errorf("%w: no artifact with id %d", ErrEditRange, fileID)
		}
		working, err := applyFileEdits(file, buckets[fileID])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		changes[file.Path] = working
	}
	return snap.WithChanges(changes)
}

type indexedEdit struct {
	TextEdit
	idx int
}

func applyFileEdits(file *source.File, edits []indexedEdit) ([]byte, error) {
	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if edits[i].Span.Overlaps(edits[j].Span) {
				return nil, fmt.Errorf("%w at %s and %s", ErrEditConflict, edits[i].Span, edits[j].Span)
			}
		}
	}

	// С конца файла к началу: смещения ещё не применённых правок не сдвигаются.
	// Вставки в одну позицию идут в обратном порядке, чтобы сохранить исходный.
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.Start != edits[j].Span.Start {
			return edits[i].Span.Start > edits[j].Span.Start
		}
		if edits[i].Span.End != edits[j].Span.End {
			return edits[i].Span.End > edits[j].Span.End
		}
		return edits[i].idx > edits[j].idx
	})

	working := append([]byte(nil), file.Content...)
	for _, edit := range edits {
		start, end := int(edit.Span.Start), int(edit.Span.End)
		if end < start || end > len(working) {
			return nil, fmt.Errorf("%w: %s", ErrEditRange, edit.Span)
		}
		if edit.OldText != "" && string(working[start:end]) != edit.OldText {
			return nil, fmt.Errorf("%w: %s", ErrStaleEdit, edit.Span)
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], edit.NewText...), suffix...)
	}
	return working, nil
}

func groupEditsByFile(edits []TextEdit) (map[source.FileID][]indexedEdit, []source.FileID) {
	buckets := make(map[source.FileID][]indexedEdit)
	order := make([]source.FileID, 0)
	for i, edit := range edits {
		if _, seen := buckets[edit.Span.File]; !seen {
			order = append(order, edit.Span.File)
		}
		buckets[edit.Span.File] = append(buckets[edit.Span.File], indexedEdit{TextEdit: edit, idx: i})
	}
	return buckets, order
}
