package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"remedy/internal/source"
)

// ErrNoExtensions is reported through the failure handler for a project whose
// language has no default extensions and whose manifest lists none.
var ErrNoExtensions = errors.New("no file extensions configured for language")

type loadedProject struct {
	manifest *Manifest
	paths    []string
	contents [][]byte
}

// Open loads the projects named by paths concurrently and assembles them into
// a workspace in argument order. Each path is a manifest file or a directory
// searched upwards for remedy.toml. A project referenced twice is opened once.
//
// Manifest errors are fatal. Unreadable files are reported through the failure
// handler and left out of their unit.
func Open(ctx context.Context, paths []string, opts ...Option) (*Workspace, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	report := func(f Failure) {
		if o.onFailure != nil {
			o.onFailure(f)
		}
	}

	manifests := make([]string, 0, len(paths))
	for _, p := range paths {
		m, err := FindManifest(p)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(manifests, m) {
			manifests = append(manifests, m)
		}
	}

	jobs := o.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]loadedProject, len(manifests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(manifests))))
	for i, manifestPath := range manifests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lp, err := loadProject(gctx, manifestPath, report)
			if err != nil {
				return err
			}
			results[i] = lp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fileSet := source.NewFileSet()
	if wd, err := os.Getwd(); err == nil {
		fileSet.SetBaseDir(wd)
	}
	ids := make(map[string]source.FileID)
	units := make([]Unit, 0, len(results))
	for _, lp := range results {
		unit := Unit{
			ID:       UnitID(source.NormalizePath(lp.manifest.Path)),
			Name:     lp.manifest.Project.Name,
			Language: lp.manifest.Project.Language,
			Dir:      lp.manifest.Root,
			Paths:    make([]string, 0, len(lp.paths)),
			RuleRefs: lp.manifest.RuleRefs(),
		}
		for i, p := range lp.paths {
			norm := source.NormalizePath(p)
			if _, ok := ids[norm]; !ok {
				ids[norm] = fileSet.Add(norm, lp.contents[i], 0)
			}
			unit.Paths = append(unit.Paths, norm)
		}
		units = append(units, unit)
	}
	return &Workspace{current: newSnapshot(fileSet, units, ids)}, nil
}

func loadProject(ctx context.Context, manifestPath string, report func(Failure)) (loadedProject, error) {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return loadedProject{}, err
	}
	unitID := UnitID(source.NormalizePath(manifestPath))

	exts := m.FileExtensions()
	if len(exts) == 0 {
		report(Failure{Unit: unitID, Path: manifestPath, Err: fmt.Errorf("%s: %w", m.Project.Language, ErrNoExtensions)})
		return loadedProject{manifest: m}, nil
	}

	files, err := listProjectFiles(m.Root, exts, m.Project.Exclude)
	if err != nil {
		return loadedProject{}, fmt.Errorf("%s: %w", manifestPath, err)
	}

	lp := loadedProject{
		manifest: m,
		paths:    make([]string, 0, len(files)),
		contents: make([][]byte, 0, len(files)),
	}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return loadedProject{}, err
		}
		// #nosec G304 -- path comes from walking the project root
		content, err := os.ReadFile(path)
		if err != nil {
			report(Failure{Unit: unitID, Path: path, Err: err})
			continue
		}
		lp.paths = append(lp.paths, path)
		lp.contents = append(lp.contents, content)
	}
	return lp, nil
}

// listProjectFiles returns the sorted files under root matching exts. Hidden
// directories and directories named in exclude are skipped.
func listProjectFiles(root string, exts, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || slices.Contains(exclude, name) {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(exts, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
