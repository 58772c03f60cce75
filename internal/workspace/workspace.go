package workspace

import (
	"errors"
	"fmt"
	"sync"

	"remedy/internal/source"
)

// Failure is a non-fatal problem met while opening or writing a workspace.
type Failure struct {
	Unit UnitID
	Path string
	Err  error
}

func (f Failure) Error() string {
	if f.Path == "" {
		return f.Err.Error()
	}
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Option configures Open.
type Option func(*options)

type options struct {
	onFailure func(Failure)
	jobs      int
}

// WithFailureHandler registers a callback for non-fatal failures.
// The callback may be invoked from multiple goroutines.
func WithFailureHandler(fn func(Failure)) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}

// WithJobs limits how many projects are read concurrently.
func WithJobs(n int) Option {
	return func(o *options) {
		o.jobs = n
	}
}

// Workspace owns the current snapshot of a set of units. Only Commit replaces
// the current snapshot.
type Workspace struct {
	mu      sync.RWMutex
	current *Snapshot
}

// File is an in-memory file used to build a workspace with New.
type File struct {
	Path    string
	Content string
}

// New builds an in-memory workspace. Files are virtual and never written to
// disk; unit paths are normalized.
func New(units []Unit, files []File) *Workspace {
	fs := source.NewFileSet()
	ids := make(map[string]source.FileID, len(files))
	for _, f := range files {
		id := fs.AddVirtual(f.Path, []byte(f.Content))
		ids[fs.Get(id).Path] = id
	}
	owned := make([]Unit, len(units))
	for i := range units {
		owned[i] = units[i].clone()
		for j, p := range owned[i].Paths {
			owned[i].Paths[j] = source.NormalizePath(p)
		}
	}
	return &Workspace{current: newSnapshot(fs, owned, ids)}
}

// Current returns the current snapshot.
func (w *Workspace) Current() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Commit makes next the current snapshot and writes every changed non-virtual
// file back to disk, keeping its permissions.
//
// next must be the current snapshot or derived from it; otherwise
// ErrStaleSnapshot is returned and nothing changes. Changed files are staged
// next to their targets and renamed into place only when every file staged.
// When a rename fails the files already replaced are restored; the current
// snapshot is left untouched either way.
func (w *Workspace) Commit(next *Snapshot) error {
	if next == nil {
		return errors.New("commit: nil snapshot")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if !next.descendsFrom(w.current) {
		return fmt.Errorf("commit version %d over %d: %w", next.Version(), w.current.Version(), ErrStaleSnapshot)
	}
	changed := make([]*source.File, 0)
	for _, file := range next.changedSince(w.current) {
		if file.Flags&source.FileVirtual == 0 {
			changed = append(changed, file)
		}
	}
	if err := persist(w.current, changed); err != nil {
		return err
	}
	w.current = next
	return nil
}
