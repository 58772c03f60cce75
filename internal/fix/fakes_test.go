package fix

import (
	"bytes"
	"context"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/registry"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

const unusedVar = "UNUSED_VAR"

// wordRule reports every occurrence of word.
type wordRule struct {
	word   string
	id     string
	sev    diag.Severity
	err    error
	panics bool
}

func newWordRule(word, id string) *wordRule {
	return &wordRule{word: word, id: id, sev: diag.SevWarning}
}

func (r *wordRule) Name() string { return "word:" + r.word }

func (r *wordRule) SupportedFindings() []diag.Descriptor {
	return []diag.Descriptor{{ID: r.id, Severity: r.sev}}
}

func (r *wordRule) Analyze(_ context.Context, pass *analysis.Pass) error {
	if r.panics {
		panic("rule exploded")
	}
	for _, f := range pass.Files {
		for _, sp := range occurrences(f, r.word) {
			pass.Report(diag.New(r.id, r.sev, sp, "unused variable"))
		}
	}
	return r.err
}

func occurrences(f *source.File, word string) []source.Span {
	var out []source.Span
	for idx := 0; ; {
		i := bytes.Index(f.Content[idx:], []byte(word))
		if i < 0 {
			return out
		}
		start := idx + i
		out = append(out, source.Span{File: f.ID, Start: uint32(start), End: uint32(start + len(word))})
		idx = start + len(word)
	}
}

// deleteWord removes up to limit occurrences of word; limit < 0 removes all.
func deleteWord(f *source.File, word string, limit int) *analysis.Edit {
	edit := &analysis.Edit{Title: "Remove " + word}
	for i, sp := range occurrences(f, word) {
		if limit >= 0 && i >= limit {
			break
		}
		edit.Changes = append(edit.Changes, diag.TextEdit{Span: sp, OldText: word})
	}
	return edit
}

type fixFunc func(fc *analysis.FixContext, call int) (*analysis.Edit, error)

// singleProvider fixes one instance through fn.
type singleProvider struct {
	name  string
	ids   []string
	fn    fixFunc
	calls int
}

func newSingle(name string, fn fixFunc) *singleProvider {
	return &singleProvider{name: name, ids: []string{unusedVar}, fn: fn}
}

func (p *singleProvider) Name() string         { return p.name }
func (p *singleProvider) Languages() []string  { return []string{"*"} }
func (p *singleProvider) FixableIDs() []string { return p.ids }

func (p *singleProvider) Fix(_ context.Context, fc *analysis.FixContext) (*analysis.Edit, error) {
	p.calls++
	return p.fn(fc, p.calls)
}

func deleteFinding(fc *analysis.FixContext, _ int) (*analysis.Edit, error) {
	sp := fc.Finding.Primary
	return analysis.DeleteSpan("Remove variable", sp, string(fc.File.Content[sp.Start:sp.End])), nil
}

func decline(*analysis.FixContext, int) (*analysis.Edit, error) { return nil, nil }

// bulkProvider groups all instances per file.
type bulkProvider struct {
	*singleProvider
	scopes      []analysis.Scope
	perGroup    int
	groupsCalls int
	groupsErr   error
}

func newBulk(name string, perGroup int) *bulkProvider {
	return &bulkProvider{
		singleProvider: newSingle(name, deleteFinding),
		scopes:         []analysis.Scope{analysis.ScopeDocument, analysis.ScopeProject},
		perGroup:       perGroup,
	}
}

func (p *bulkProvider) BulkFixer() analysis.BulkFixer { return p }
func (p *bulkProvider) SupportedIDs() []string        { return p.ids }
func (p *bulkProvider) Scopes() []analysis.Scope      { return p.scopes }

func (p *bulkProvider) Groups(_ context.Context, bc *analysis.BulkContext) ([]analysis.EditGroup, error) {
	p.groupsCalls++
	if p.groupsErr != nil {
		return nil, p.groupsErr
	}
	build := func(_ context.Context, _ *workspace.Snapshot, f *source.File) (*analysis.Edit, error) {
		return deleteWord(f, "unused", p.perGroup), nil
	}
	return analysis.GroupByFile(bc.Snapshot, bc.Findings, "Remove unused variables", build), nil
}

func unitIndex(rules []analysis.Rule, providers ...analysis.Provider) *registry.UnitIndex {
	ui := &registry.UnitIndex{Rules: rules, Providers: make(map[string][]analysis.Provider)}
	for _, p := range providers {
		for _, id := range p.FixableIDs() {
			ui.Providers[id] = append(ui.Providers[id], p)
		}
	}
	return ui
}

func newWorkspace(files ...workspace.File) *workspace.Workspace {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return workspace.New([]workspace.Unit{{ID: "u", Name: "demo", Language: "go", Paths: paths}}, files)
}
