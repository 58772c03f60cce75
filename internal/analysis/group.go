package analysis

import (
	"context"
	"fmt"

	"remedy/internal/diag"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

// FileEditBuilder computes one edit for the latest version of a file.
type FileEditBuilder func(ctx context.Context, snap *workspace.Snapshot, file *source.File) (*Edit, error)

// GroupByFile partitions findings into one group per file, in order of first
// appearance. Each group resolves its file by path in the snapshot passed to
// Build, so earlier groups may have rewritten other files.
func GroupByFile(snap *workspace.Snapshot, findings []diag.Diagnostic, title string, build FileEditBuilder) []EditGroup {
	fs := snap.FileSet()
	byPath := make(map[string]int)
	groups := make([]EditGroup, 0)
	for _, d := range findings {
		f := fs.Get(d.Primary.File)
		if f == nil {
			continue
		}
		if idx, ok := byPath[f.Path]; ok {
			groups[idx].Findings = append(groups[idx].Findings, d)
			continue
		}
		path := f.Path
		byPath[path] = len(groups)
		groups = append(groups, EditGroup{
			Title:    fmt.Sprintf("%s in %s", title, source.BaseName(path)),
			Findings: []diag.Diagnostic{d},
			Build: func(ctx context.Context, latest *workspace.Snapshot) (*Edit, error) {
				file, ok := latest.File(path)
				if !ok {
					return nil, fmt.Errorf("%s: file is not part of the snapshot", path)
				}
				return build(ctx, latest, file)
			},
		})
	}
	return groups
}
