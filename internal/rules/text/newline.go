package text

import (
	"context"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

const FinalNewlineID = "RMD1002"

var finalNewline = diag.Descriptor{
	ID:       FinalNewlineID,
	Title:    "missing final newline",
	Severity: diag.SevInfo,
}

type finalNewlineRule struct{}

func (finalNewlineRule) Name() string { return "final-newline" }

func (finalNewlineRule) SupportedFindings() []diag.Descriptor {
	return []diag.Descriptor{finalNewline}
}

func (finalNewlineRule) Analyze(ctx context.Context, pass *analysis.Pass) error {
	for _, file := range pass.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !missingFinalNewline(file) {
			continue
		}
		end := file.Size()
		pass.Report(diag.New(FinalNewlineID, finalNewline.Severity, source.Span{File: file.ID, Start: end, End: end}, "file does not end with a newline"))
	}
	return nil
}

func missingFinalNewline(file *source.File) bool {
	n := len(file.Content)
	return n > 0 && file.Content[n-1] != '\n'
}

func appendNewline(file *source.File) *analysis.Edit {
	if !missingFinalNewline(file) {
		return nil
	}
	end := file.Size()
	return analysis.InsertText("Add final newline", source.Span{File: file.ID, Start: end, End: end}, lineEnding(file.Content))
}

type finalNewlineProvider struct{}

func (finalNewlineProvider) Name() string                    { return "add-final-newline" }
func (finalNewlineProvider) Languages() []string             { return []string{"*"} }
func (finalNewlineProvider) FixableIDs() []string            { return []string{FinalNewlineID} }
func (p finalNewlineProvider) BulkFixer() analysis.BulkFixer { return p }

func (finalNewlineProvider) Fix(_ context.Context, fc *analysis.FixContext) (*analysis.Edit, error) {
	if fc.Finding.Primary.File != fc.File.ID {
		return nil, nil
	}
	return appendNewline(fc.File), nil
}

func (finalNewlineProvider) SupportedIDs() []string {
	return []string{FinalNewlineID}
}

func (finalNewlineProvider) Scopes() []analysis.Scope {
	return []analysis.Scope{analysis.ScopeDocument, analysis.ScopeProject}
}

func (finalNewlineProvider) Groups(_ context.Context, bc *analysis.BulkContext) ([]analysis.EditGroup, error) {
	build := func(_ context.Context, _ *workspace.Snapshot, file *source.File) (*analysis.Edit, error) {
		return appendNewline(file), nil
	}
	return analysis.GroupByFile(bc.Snapshot, bc.Findings, "Add final newline", build), nil
}
