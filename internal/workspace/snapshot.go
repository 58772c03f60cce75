package workspace

import (
	"remedy/internal/source"
)

// Snapshot is an immutable view of all units and file versions at one point
// in time. Snapshots share an append-only FileSet; every accepted edit adds new
// file versions and yields a new snapshot with Version()+1.
//
// Snapshots are not safe for concurrent Apply.
type Snapshot struct {
	fs      *source.FileSet
	version uint64
	parent  *Snapshot
	files   map[string]source.FileID // normalized path -> current version
	units   []Unit
	byID    map[UnitID]int
}

func newSnapshot(fs *source.FileSet, units []Unit, files map[string]source.FileID) *Snapshot {
	s := &Snapshot{
		fs:    fs,
		files: files,
		units: units,
		byID:  make(map[UnitID]int, len(units)),
	}
	for i := range units {
		s.byID[units[i].ID] = i
	}
	return s
}

// Version returns the snapshot version, starting at 0 for a freshly opened
// workspace.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// FileSet returns the shared file store. Callers must only read from it.
func (s *Snapshot) FileSet() *source.FileSet {
	return s.fs
}

// Units returns the units in manifest order.
func (s *Snapshot) Units() []Unit {
	return s.units
}

// Unit resolves a unit by id.
func (s *Snapshot) Unit(id UnitID) (*Unit, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.units[idx], true
}

// File returns the current version of path.
func (s *Snapshot) File(path string) (*source.File, bool) {
	id, ok := s.files[source.NormalizePath(path)]
	if !ok {
		return nil, false
	}
	return s.fs.Get(id), true
}

// Lookup returns the file for id if id is the current version of its path in
// this snapshot.
func (s *Snapshot) Lookup(id source.FileID) (*source.File, bool) {
	f := s.fs.Get(id)
	if f == nil {
		return nil, false
	}
	if cur, ok := s.files[f.Path]; !ok || cur != id {
		return nil, false
	}
	return f, true
}

// Files returns the current files of unit in path order. Paths missing from the
// snapshot are skipped.
func (s *Snapshot) Files(unit *Unit) []*source.File {
	if unit == nil {
		return nil
	}
	out := make([]*source.File, 0, len(unit.Paths))
	for _, p := range unit.Paths {
		if f, ok := s.File(p); ok {
			out = append(out, f)
		}
	}
	return out
}

// Languages returns the distinct unit languages in first-seen order.
func (s *Snapshot) Languages() []string {
	seen := make(map[string]struct{}, len(s.units))
	out := make([]string, 0, len(s.units))
	for i := range s.units {
		lang := s.units[i].Language
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return out
}

// descendsFrom reports whether s is base or was derived from it through Apply.
func (s *Snapshot) descendsFrom(base *Snapshot) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur == base {
			return true
		}
	}
	return false
}

// changedSince returns the files whose version differs from base, in path order
// of the units that own them.
func (s *Snapshot) changedSince(base *Snapshot) []*source.File {
	out := make([]*source.File, 0)
	seen := make(map[string]struct{})
	for i := range s.units {
		for _, p := range s.units[i].Paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			id, ok := s.files[p]
			if !ok {
				continue
			}
			if prev, ok := base.files[p]; ok && prev == id {
				continue
			}
			out = append(out, s.fs.Get(id))
		}
	}
	return out
}
