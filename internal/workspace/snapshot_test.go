package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remedy/internal/diag"
	"remedy/internal/source"
)

func newTestWorkspace(t *testing.T, files ...File) *Workspace {
	t.Helper()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return New([]Unit{{ID: "u", Name: "u", Language: "text", Paths: paths}}, files)
}

func fileID(t *testing.T, snap *Snapshot, path string) source.FileID {
	t.Helper()
	f, ok := snap.File(path)
	require.True(t, ok, "file %s not found", path)
	return f.ID
}

func content(t *testing.T, snap *Snapshot, path string) string {
	t.Helper()
	f, ok := snap.File(path)
	require.True(t, ok, "file %s not found", path)
	return string(f.Content)
}

func TestApplyProducesNewVersion(t *testing.T) {
	ws := newTestWorkspace(t, File{Path: "a.txt", Content: "hello world"})
	base := ws.Current()
	id := fileID(t, base, "a.txt")

	next, err := base.Apply([]diag.TextEdit{
		{Span: source.Span{File: id, Start: 0, End: 5}, NewText: "HELLO", OldText: "hello"},
		{Span: source.Span{File: id, Start: 11, End: 11}, NewText: "!"},
	})
	require.NoError(t, err)

	assert.Equal(t, base.Version()+1, next.Version())
	assert.Equal(t, "HELLO world!", content(t, next, "a.txt"))
	assert.Equal(t, "hello world", content(t, base, "a.txt"), "base snapshot must not change")
	assert.NotEqual(t, id, fileID(t, next, "a.txt"))
}

func TestApplyRejectsStaleFileID(t *testing.T) {
	ws := newTestWorkspace(t, File{Path: "a.txt", Content: "abc"})
	base := ws.Current()
	old := fileID(t, base, "a.txt")

	next, err := base.Apply([]diag.TextEdit{{Span: source.Span{File: old, Start: 0, End: 1}, NewText: "x"}})
	require.NoError(t, err)

	_, err = next.Apply([]diag.TextEdit{{Span: source.Span{File: old, Start: 1, End: 2}, NewText: "y"}})
	require.ErrorIs(t, err, ErrStaleEdit)
	assert.Equal(t, "xbc", content(t, next, "a.txt"))
}

func TestApplyRejectsInvalidEdits(t *testing.T) {
	ws := newTestWorkspace(t, File{Path: "a.txt", Content: "abcdef"})
	base := ws.Current()
	id := fileID(t, base, "a.txt")

	tests := []struct {
		name  string
		edits []diag.TextEdit
		want  error
	}{
		{
			name: "overlap",
			edits: []diag.TextEdit{
				{Span: source.Span{File: id, Start: 0, End: 3}, NewText: "x"},
				{Span: source.Span{File: id, Start: 2, End: 4}, NewText: "y"},
			},
			want: ErrEditConflict,
		},
		{
			name: "insert inside replaced range",
			edits: []diag.TextEdit{
				{Span: source.Span{File: id, Start: 1, End: 3}, NewText: "x"},
				{Span: source.Span{File: id, Start: 2, End: 2}, NewText: "y"},
			},
			want: ErrEditConflict,
		},
		{
			name:  "guard mismatch",
			edits: []diag.TextEdit{{Span: source.Span{File: id, Start: 0, End: 2}, NewText: "x", OldText: "zz"}},
			want:  ErrGuardMismatch,
		},
		{
			name:  "out of range",
			edits: []diag.TextEdit{{Span: source.Span{File: id, Start: 4, End: 10}, NewText: "x"}},
			want:  ErrSpanRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := base.Apply(tt.edits)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, "abcdef", content(t, ws.Current(), "a.txt"))
		})
	}
}

func TestApplyAdjacentEditsAndInsertOrder(t *testing.T) {
	ws := newTestWorkspace(t, File{Path: "a.txt", Content: "abc"})
	base := ws.Current()
	id := fileID(t, base, "a.txt")

	next, err := base.Apply([]diag.TextEdit{
		{Span: source.Span{File: id, Start: 1, End: 1}, NewText: "1"},
		{Span: source.Span{File: id, Start: 0, End: 1}, NewText: "A"},
		{Span: source.Span{File: id, Start: 1, End: 1}, NewText: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A12bc", content(t, next, "a.txt"))
}

func TestApplyNoEditsReturnsSameSnapshot(t *testing.T) {
	ws := newTestWorkspace(t, File{Path: "a.txt", Content: "abc"})
	base := ws.Current()
	next, err := base.Apply(nil)
	require.NoError(t, err)
	assert.Same(t, base, next)
}

func TestCommit(t *testing.T) {
	ws := newTestWorkspace(t, File{Path: "a.txt", Content: "abc"})
	base := ws.Current()
	id := fileID(t, base, "a.txt")

	first, err := base.Apply([]diag.TextEdit{{Span: source.Span{File: id, Start: 0, End: 1}, NewText: "x"}})
	require.NoError(t, err)
	second, err := first.Apply([]diag.TextEdit{{Span: source.Span{File: fileID(t, first, "a.txt"), Start: 1, End: 2}, NewText: "y"}})
	require.NoError(t, err)

	require.NoError(t, ws.Commit(second))
	assert.Same(t, second, ws.Current())
	assert.Equal(t, uint64(2), ws.Current().Version())

	// a sibling of an already committed snapshot is stale
	sibling, err := base.Apply([]diag.TextEdit{{Span: source.Span{File: id, Start: 2, End: 3}, NewText: "z"}})
	require.NoError(t, err)
	require.ErrorIs(t, ws.Commit(sibling), ErrStaleSnapshot)
	assert.Equal(t, "xyc", content(t, ws.Current(), "a.txt"))
}

func TestSnapshotLookupAndUnits(t *testing.T) {
	ws := New([]Unit{
		{ID: "one", Language: "go", Paths: []string{"./a/x.go"}},
		{ID: "two", Language: "text", Paths: []string{"b.txt", "missing.txt"}},
		{ID: "three", Language: "go"},
	}, []File{{Path: "a/x.go", Content: "package a\n"}, {Path: "b.txt", Content: "b"}})
	snap := ws.Current()

	u, ok := snap.Unit("two")
	require.True(t, ok)
	files := snap.Files(u)
	require.Len(t, files, 1)
	assert.Equal(t, "b.txt", files[0].Path)

	one, _ := snap.Unit("one")
	assert.Equal(t, []string{"a/x.go"}, one.Paths)

	_, ok = snap.Unit("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{"go", "text"}, snap.Languages())

	f, ok := snap.File("a/x.go")
	require.True(t, ok)
	_, ok = snap.Lookup(f.ID)
	assert.True(t, ok)
	_, ok = snap.Lookup(source.FileID(99))
	assert.False(t, ok)
}
