// Package gofmt provides the built-in "gofmt" rule origin for Go units.
package gofmt

import (
	"bytes"
	"context"
	"go/format"

	"fortio.org/safecast"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/origin"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

const (
	Name     = "gofmt"
	Language = "go"

	UnformattedID = "RMD2001"
)

const apiVersion = "v1.2.0"

var unformatted = diag.Descriptor{
	ID:       UnformattedID,
	Title:    "file is not gofmt-formatted",
	Severity: diag.SevWarning,
}

func init() {
	origin.Register(Name, "builtin:"+Name, New)
}

type gofmtOrigin struct{}

// New creates the gofmt origin.
func New(context.Context) (analysis.Origin, error) {
	return gofmtOrigin{}, nil
}

func (gofmtOrigin) Name() string       { return Name }
func (gofmtOrigin) APIVersion() string { return apiVersion }

func (gofmtOrigin) Rules(language string) []analysis.Rule {
	if language != Language {
		return nil
	}
	return []analysis.Rule{rule{}}
}

func (gofmtOrigin) Providers() []analysis.Provider {
	return []analysis.Provider{provider{}}
}

type rule struct{}

func (rule) Name() string { return "gofmt" }

func (rule) SupportedFindings() []diag.Descriptor {
	return []diag.Descriptor{unformatted}
}

// Analyze reports one finding per file whose formatted form differs. The span
// starts at the first differing byte and ends with that line. Files that do
// not parse are left to the compiler.
func (rule) Analyze(ctx context.Context, pass *analysis.Pass) error {
	for _, file := range pass.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		formatted, err := format.Source(file.Content)
		if err != nil || bytes.Equal(formatted, file.Content) {
			continue
		}
		sp, err := diffSpan(file, formatted)
		if err != nil {
			return err
		}
		pass.Report(diag.New(UnformattedID, unformatted.Severity, sp, "file is not gofmt-formatted"))
	}
	return nil
}

func diffSpan(file *source.File, formatted []byte) (source.Span, error) {
	content := file.Content
	start := 0
	for start < len(content) && start < len(formatted) && content[start] == formatted[start] {
		start++
	}
	end := len(content)
	if nl := bytes.IndexByte(content[start:], '\n'); nl >= 0 {
		end = start + nl
	}
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return source.Span{}, err
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		return source.Span{}, err
	}
	return source.Span{File: file.ID, Start: s, End: e}, nil
}

// formatEdit rewrites the whole file. A file that no longer parses or is
// already formatted yields no edit.
func formatEdit(file *source.File) *analysis.Edit {
	formatted, err := format.Source(file.Content)
	if err != nil || bytes.Equal(formatted, file.Content) {
		return nil
	}
	return analysis.ReplaceSpan("Format with gofmt", file.Span(), string(formatted), "")
}

type provider struct{}

func (provider) Name() string                    { return "gofmt" }
func (provider) Languages() []string             { return []string{Language} }
func (provider) FixableIDs() []string            { return []string{UnformattedID} }
func (p provider) BulkFixer() analysis.BulkFixer { return p }
func (provider) SupportedIDs() []string          { return []string{UnformattedID} }

func (provider) Scopes() []analysis.Scope {
	return []analysis.Scope{analysis.ScopeDocument, analysis.ScopeProject}
}

func (provider) Fix(_ context.Context, fc *analysis.FixContext) (*analysis.Edit, error) {
	if fc.Finding.Primary.File != fc.File.ID {
		return nil, nil
	}
	return formatEdit(fc.File), nil
}

func (provider) Groups(_ context.Context, bc *analysis.BulkContext) ([]analysis.EditGroup, error) {
	build := func(_ context.Context, _ *workspace.Snapshot, file *source.File) (*analysis.Edit, error) {
		return formatEdit(file), nil
	}
	return analysis.GroupByFile(bc.Snapshot, bc.Findings, "Format with gofmt", build), nil
}
