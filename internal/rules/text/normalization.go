package text

import (
	"context"

	"golang.org/x/text/unicode/norm"

	"remedy/internal/analysis"
	"remedy/internal/diag"
)

const NormalizationID = "RMD1003"

var normalization = diag.Descriptor{
	ID:       NormalizationID,
	Title:    "text is not in Unicode NFC",
	Severity: diag.SevWarning,
}

type normalizationRule struct{}

func (normalizationRule) Name() string { return "unicode-nfc" }

func (normalizationRule) SupportedFindings() []diag.Descriptor {
	return []diag.Descriptor{normalization}
}

// Analyze reports the first non-NFC segment of each file. The fix rewrites
// the whole file, so one finding per file is enough.
func (normalizationRule) Analyze(ctx context.Context, pass *analysis.Pass) error {
	for _, file := range pass.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		start, ok := firstDenormalized(file.Content)
		if !ok {
			continue
		}
		end := start + norm.NFC.NextBoundary(file.Content[start:], true)
		if end <= start {
			end = len(file.Content)
		}
		sp, err := spanOf(file, start, end)
		if err != nil {
			return err
		}
		pass.Report(diag.New(NormalizationID, normalization.Severity, sp, "text is not in Unicode normalization form C"))
	}
	return nil
}

// firstDenormalized returns the offset of the first segment that changes
// under NFC.
func firstDenormalized(content []byte) (int, bool) {
	if norm.NFC.IsNormal(content) {
		return 0, false
	}
	n, _ := norm.NFC.Span(content, true)
	// Span stops at the start of the segment that needs rewriting.
	return n, true
}

type normalizationProvider struct{}

func (normalizationProvider) Name() string         { return "normalize-nfc" }
func (normalizationProvider) Languages() []string  { return []string{"*"} }
func (normalizationProvider) FixableIDs() []string { return []string{NormalizationID} }

func (normalizationProvider) Fix(_ context.Context, fc *analysis.FixContext) (*analysis.Edit, error) {
	if fc.Finding.Primary.File != fc.File.ID {
		return nil, nil
	}
	if _, ok := firstDenormalized(fc.File.Content); !ok {
		return nil, nil
	}
	return analysis.ReplaceSpan("Normalize to NFC", fc.File.Span(), string(norm.NFC.Bytes(fc.File.Content)), ""), nil
}
