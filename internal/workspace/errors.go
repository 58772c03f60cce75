package workspace

import "errors"

var (
	// ErrStaleSnapshot is returned by Commit when the snapshot does not descend
	// from the current one.
	ErrStaleSnapshot = errors.New("snapshot is not derived from the current snapshot")
	// ErrStaleEdit is returned by Apply when an edit targets a file version that
	// is not current in the snapshot.
	ErrStaleEdit = errors.New("edit targets a stale file version")
	// ErrEditConflict is returned by Apply for overlapping edits.
	ErrEditConflict = errors.New("conflicting edits")
	// ErrGuardMismatch is returned by Apply when an edit's OldText does not match.
	ErrGuardMismatch = errors.New("existing text does not match expected content")
	// ErrSpanRange is returned by Apply for spans outside the file.
	ErrSpanRange = errors.New("edit span out of range")
	// ErrPartialCommit is returned by Commit when a failed write could not be
	// rolled back and some files on disk hold the new content.
	ErrPartialCommit = errors.New("commit left files partially written")
	// ErrNoManifest is returned by Open when no remedy.toml can be found.
	ErrNoManifest = errors.New("no remedy.toml found")
)
