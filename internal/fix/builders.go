package fix

import (
	"context"

	"bulkfix/internal/provider"
	"bulkfix/internal/source"
)

// Option mutates an action during construction.
type Option func(*provider.Action)

// WithVariant sets the variant key of the action.
func WithVariant(key string) Option {
	return func(a *provider.Action) {
		a.Variant = key
	}
}

func applyOptions(a provider.Action, opts []Option) provider.Action {
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}
	return a
}

// EditAction builds an action that applies edits with ApplyEdits.
func EditAction(title string, edits []TextEdit, opts ...Option) provider.Action {
	owned := append([]TextEdit(nil), edits...)
	action := provider.Action{
		Title: title,
		Apply: func(ctx context.Context, snap *source.Snapshot) (*source.Snapshot, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return ApplyEdits(snap, owned)
		},
	}
	return applyOptions(action, opts)
}

// InsertText creates an action that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, guard string, opts ...Option) provider.Action {
	return EditAction(title, []TextEdit{{Span: at, NewText: text, OldText: guard}}, opts...)
}

// DeleteSpan removes text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) provider.Action {
	return EditAction(title, []TextEdit{{Span: span, OldText: expect}}, opts...)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) provider.Action {
	return EditAction(title, []TextEdit{{Span: span, NewText: newText, OldText: expect}}, opts...)
}
