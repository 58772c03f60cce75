package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"remedy/internal/source"
)

// staged is a changed file written to a temporary sibling of its target.
type staged struct {
	path string
	temp string
	mode os.FileMode
}

// persist writes files to disk as one unit. Every file is staged first, so a
// failure while staging leaves the disk untouched. base holds the content to
// restore if a rename fails halfway.
func persist(base *Snapshot, files []*source.File) error {
	if len(files) == 0 {
		return nil
	}
	stages := make([]staged, 0, len(files))
	defer func() {
		for _, st := range stages {
			_ = os.Remove(st.temp)
		}
	}()
	for _, file := range files {
		st, err := stage(file)
		if err != nil {
			return err
		}
		stages = append(stages, st)
	}

	for i, st := range stages {
		if err := os.Rename(st.temp, st.path); err != nil {
			return rollback(base, stages[:i], fmt.Errorf("write %s: %w", st.path, err))
		}
	}
	return nil
}

func stage(file *source.File) (staged, error) {
	path := filepath.FromSlash(file.Path)
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return staged{}, fmt.Errorf("write %s: is a directory", file.Path)
		}
		mode = info.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".remedy-*")
	if err != nil {
		return staged{}, fmt.Errorf("write %s: %w", file.Path, err)
	}
	st := staged{path: path, temp: f.Name(), mode: mode}
	if _, err = f.Write(file.Content); err == nil {
		err = f.Chmod(mode)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(st.temp)
		return staged{}, fmt.Errorf("write %s: %w", file.Path, err)
	}
	return st, nil
}

// rollback restores the files already renamed into place from base.
func rollback(base *Snapshot, done []staged, cause error) error {
	var dirty []string
	var errs []error
	for _, st := range done {
		prev, ok := base.File(st.path)
		if !ok {
			dirty = append(dirty, st.path)
			continue
		}
		if err := os.WriteFile(st.path, prev.Content, st.mode); err != nil {
			dirty = append(dirty, st.path)
			errs = append(errs, err)
		}
	}
	if len(dirty) == 0 {
		return cause
	}
	errs = append([]error{cause, fmt.Errorf("%w: %s", ErrPartialCommit, strings.Join(dirty, ", "))}, errs...)
	return errors.Join(errs...)
}
