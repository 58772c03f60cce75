package text

import (
	"bytes"
	"context"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

const TrailingWhitespaceID = "RMD1001"

var trailingWhitespace = diag.Descriptor{
	ID:       TrailingWhitespaceID,
	Title:    "trailing whitespace",
	Severity: diag.SevWarning,
}

type trailingWhitespaceRule struct{}

func (trailingWhitespaceRule) Name() string { return "trailing-whitespace" }

func (trailingWhitespaceRule) SupportedFindings() []diag.Descriptor {
	return []diag.Descriptor{trailingWhitespace}
}

func (trailingWhitespaceRule) Analyze(ctx context.Context, pass *analysis.Pass) error {
	for _, file := range pass.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		spans, err := trailingSpans(file)
		if err != nil {
			return err
		}
		for _, sp := range spans {
			pass.Report(diag.New(TrailingWhitespaceID, trailingWhitespace.Severity, sp, "trailing whitespace"))
		}
	}
	return nil
}

// trailingSpans returns the runs of spaces and tabs that end a line. A '\r'
// before '\n' is part of the line ending. Runs inside verbatim ranges of the
// language are left alone.
func trailingSpans(file *source.File, language string) ([]source.Span, error) {
	content := file.Content
	keep := verbatimRanges(language, content)
	var out []source.Span
	for lineStart := 0; lineStart <= len(content); {
		end, next := len(content), len(content)+1
		if nl := bytes.IndexByte(content[lineStart:], '\n'); nl >= 0 {
			end = lineStart + nl
			next = end + 1
			if end > lineStart && content[end-1] == '\r' {
				end--
			}
		}
		start := end
		for start > lineStart && isBlank(content[start-1]) {
			start--
		}
		if start < end && !insideAny(keep, start, end) {
			sp, err := spanOf(file, start, end)
			if err != nil {
				return nil, err
			}
			out = append(out, sp)
		}
		lineStart = next
	}
	return out, nil
}

func languageOf(unit *workspace.Unit) string {
	if unit == nil {
		return ""
	}
	return unit.Language
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func stripEdits(file *source.File, language string) ([]diag.TextEdit, error) {
	spans, err := trailingSpans(file, language)
	if err != nil {
		return nil, err
	}
	edits := make([]diag.TextEdit, 0, len(spans))
	for _, sp := range spans {
		edits = append(edits, diag.TextEdit{Span: sp, OldText: string(file.Content[sp.Start:sp.End])})
	}
	return edits, nil
}

type trailingWhitespaceProvider struct{}

func (trailingWhitespaceProvider) Name() string                    { return "strip-trailing-whitespace" }
func (trailingWhitespaceProvider) Languages() []string             { return []string{"*"} }
func (trailingWhitespaceProvider) FixableIDs() []string            { return []string{TrailingWhitespaceID} }
func (p trailingWhitespaceProvider) BulkFixer() analysis.BulkFixer { return p }

func (trailingWhitespaceProvider) Fix(_ context.Context, fc *analysis.FixContext) (*analysis.Edit, error) {
	sp := fc.Finding.Primary
	if sp.File != fc.File.ID || sp.End > fc.File.Size() || sp.Empty() {
		return nil, nil
	}
	old := fc.File.Content[sp.Start:sp.End]
	for _, b := range old {
		if !isBlank(b) {
			return nil, nil
		}
	}
	if insideAny(verbatimRanges(languageOf(fc.Unit), fc.File.Content), int(sp.Start), int(sp.End)) {
		return nil, nil
	}
	return analysis.DeleteSpan("Remove trailing whitespace", sp, string(old)), nil
}

func (trailingWhitespaceProvider) SupportedIDs() []string {
	return []string{TrailingWhitespaceID}
}

func (trailingWhitespaceProvider) Scopes() []analysis.Scope {
	return []analysis.Scope{analysis.ScopeDocument, analysis.ScopeProject}
}

func (trailingWhitespaceProvider) Groups(_ context.Context, bc *analysis.BulkContext) ([]analysis.EditGroup, error) {
	language := languageOf(bc.Unit)
	build := func(_ context.Context, _ *workspace.Snapshot, file *source.File) (*analysis.Edit, error) {
		edits, err := stripEdits(file, language)
		if err != nil {
			return nil, err
		}
		return &analysis.Edit{Title: "Remove trailing whitespace", Changes: edits}, nil
	}
	return analysis.GroupByFile(bc.Snapshot, bc.Findings, "Remove trailing whitespace", build), nil
}
