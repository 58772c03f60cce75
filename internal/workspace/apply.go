package workspace

import (
	"fmt"
	"maps"
	"sort"

	"remedy/internal/diag"
	"remedy/internal/source"
)

// Apply applies edits atomically and returns the resulting snapshot.
//
// Every edit must target the current version of its file, edits in the same
// file must not overlap, and guarded edits must match the existing text.
// On any violation nothing is applied. Apply with no edits returns s itself.
func (s *Snapshot) Apply(edits []diag.TextEdit) (*Snapshot, error) {
	if len(edits) == 0 {
		return s, nil
	}

	buckets, order := groupEditsByFile(edits)
	rewritten := make(map[source.FileID][]byte, len(buckets))
	for _, fileID := range order {
		file, ok := s.Lookup(fileID)
		if !ok {
			return nil, fmt.Errorf("file %d: %w", fileID, ErrStaleEdit)
		}
		content, err := applyFileEdits(file, buckets[fileID])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		rewritten[fileID] = content
	}

	files := maps.Clone(s.files)
	for _, fileID := range order {
		next, err := s.fs.Replace(fileID, rewritten[fileID])
		if err != nil {
			return nil, err
		}
		files[s.fs.Get(next).Path] = next
	}

	out := newSnapshot(s.fs, s.units, files)
	out.byID = s.byID
	out.version = s.version + 1
	out.parent = s
	return out, nil
}

func applyFileEdits(file *source.File, edits []diag.TextEdit) ([]byte, error) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.Start != edits[j].Span.Start {
			return edits[i].Span.Start < edits[j].Span.Start
		}
		return edits[i].Span.End < edits[j].Span.End
	})

	size := file.Size()
	for i, edit := range edits {
		if edit.Span.Start > edit.Span.End || edit.Span.End > size {
			return nil, fmt.Errorf("%s: %w", edit.Span, ErrSpanRange)
		}
		if edit.OldText != "" && string(file.Content[edit.Span.Start:edit.Span.End]) != edit.OldText {
			return nil, fmt.Errorf("%s: %w", edit.Span, ErrGuardMismatch)
		}
		for _, prev := range edits[:i] {
			if prev.Span.Conflicts(edit.Span) {
				return nil, fmt.Errorf("%s and %s: %w", prev.Span, edit.Span, ErrEditConflict)
			}
		}
	}

	out := make([]byte, 0, len(file.Content))
	var cursor uint32
	for _, edit := range edits {
		out = append(out, file.Content[cursor:edit.Span.Start]...)
		out = append(out, edit.NewText...)
		cursor = edit.Span.End
	}
	out = append(out, file.Content[cursor:]...)
	return out, nil
}

// groupEditsByFile buckets edits per file, keeping the order in which files
// first appear.
func groupEditsByFile(edits []diag.TextEdit) (map[source.FileID][]diag.TextEdit, []source.FileID) {
	buckets := make(map[source.FileID][]diag.TextEdit)
	order := make([]source.FileID, 0)
	for _, edit := range edits {
		if _, ok := buckets[edit.Span.File]; !ok {
			order = append(order, edit.Span.File)
		}
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return buckets, order
}
