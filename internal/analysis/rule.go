package analysis

import (
	"context"

	"remedy/internal/diag"
	"remedy/internal/source"
	"remedy/internal/workspace"
)

// Rule inspects a unit and reports findings.
type Rule interface {
	Name() string
	// SupportedFindings lists every identifier the rule may report.
	SupportedFindings() []diag.Descriptor
	Analyze(ctx context.Context, pass *Pass) error
}

// Pass is the input of one Rule.Analyze call.
type Pass struct {
	Snapshot *workspace.Snapshot
	Unit     *workspace.Unit
	Files    []*source.File
	Reporter diag.Reporter
}

// Report emits a finding.
func (p *Pass) Report(d diag.Diagnostic) {
	if p.Reporter != nil {
		p.Reporter.Report(d)
	}
}

// IDs returns the identifiers declared by r.
func IDs(r Rule) []string {
	descs := r.SupportedFindings()
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.ID)
	}
	return out
}
