package analysis

import (
	"remedy/internal/diag"
	"remedy/internal/source"
)

// EditOption mutates an edit during construction.
type EditOption func(*Edit)

// WithChanges appends further text edits.
func WithChanges(changes ...diag.TextEdit) EditOption {
	return func(e *Edit) {
		e.Changes = append(e.Changes, changes...)
	}
}

func newEdit(title string, change diag.TextEdit, opts []EditOption) *Edit {
	e := &Edit{Title: title, Changes: []diag.TextEdit{change}}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// InsertText creates an edit inserting text at an empty span.
func InsertText(title string, at source.Span, text string, opts ...EditOption) *Edit {
	at.End = at.Start
	return newEdit(title, diag.TextEdit{Span: at, NewText: text}, opts)
}

// DeleteSpan removes the text covered by span. expect, when set, guards the edit.
func DeleteSpan(title string, span source.Span, expect string, opts ...EditOption) *Edit {
	return newEdit(title, diag.TextEdit{Span: span, OldText: expect}, opts)
}

// ReplaceSpan replaces the text covered by span with newText. expect, when set,
// guards the edit.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...EditOption) *Edit {
	return newEdit(title, diag.TextEdit{Span: span, NewText: newText, OldText: expect}, opts)
}
