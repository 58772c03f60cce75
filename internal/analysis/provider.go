package analysis

import (
	"context"

	"remedy/internal/diag"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

// Edit is a proposed change: a title and text edits against one snapshot.
type Edit struct {
	Title   string
	Changes []diag.TextEdit
}

// Empty reports whether the edit carries no changes.
func (e *Edit) Empty() bool {
	return e == nil || len(e.Changes) == 0
}

// FixContext is the input of Provider.Fix.
type FixContext struct {
	Snapshot *workspace.Snapshot
	Unit     *workspace.Unit
	File     *source.File
	Finding  diag.Diagnostic
}

// Provider proposes edits for findings.
type Provider interface {
	Name() string
	// Languages lists the unit languages the provider applies to. An empty list
	// or "*" matches every language.
	Languages() []string
	FixableIDs() []string
	// Fix returns a nil edit to decline.
	Fix(ctx context.Context, fc *FixContext) (*Edit, error)
}

// Scope is the reach of a bulk fix.
type Scope uint8

const (
	ScopeDocument Scope = iota + 1
	ScopeProject
)

func (s Scope) String() string {
	switch s {
	case ScopeDocument:
		return "document"
	case ScopeProject:
		return "project"
	}
	return "unknown"
}

// BulkProvider is implemented by providers able to fix many instances at once.
type BulkProvider interface {
	Provider
	BulkFixer() BulkFixer
}

// BulkFixer partitions findings into equivalence groups, each fixable by one edit.
type BulkFixer interface {
	SupportedIDs() []string
	Scopes() []Scope
	Groups(ctx context.Context, bc *BulkContext) ([]EditGroup, error)
}

// BulkContext is the input of BulkFixer.Groups.
type BulkContext struct {
	Snapshot *workspace.Snapshot
	Unit     *workspace.Unit
	ID       string
	Scope    Scope
	// Findings are all current findings with ID, in reported order.
	Findings []diag.Diagnostic
}

// EditGroup is one bulk equivalence group. Build is called lazily with the
// latest working snapshot, which may already contain edits of earlier groups.
type EditGroup struct {
	Title    string
	Findings []diag.Diagnostic
	Build    func(ctx context.Context, snap *workspace.Snapshot) (*Edit, error)
}

// Supports reports whether list contains want or the "*" wildcard.
func Supports(list []string, want string) bool {
	if len(list) == 0 {
		return false
	}
	for _, v := range list {
		if v == want || v == "*" {
			return true
		}
	}
	return false
}

// AppliesTo reports whether p handles units of language lang.
func AppliesTo(p Provider, lang string) bool {
	langs := p.Languages()
	return len(langs) == 0 || Supports(langs, lang)
}

// HasScope reports whether f supports scope.
func HasScope(f BulkFixer, scope Scope) bool {
	for _, s := range f.Scopes() {
		if s == scope {
			return true
		}
	}
	return false
}
