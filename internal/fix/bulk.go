package fix

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/workspace"
)

// tryFixAll fixes every instance of finding.ID in the unit with the first bulk
// provider that produces an edit. Groups are built one at a time against the
// working snapshot, which already contains the edits of earlier groups.
func (e *Engine) tryFixAll(
	ctx context.Context,
	snap *workspace.Snapshot,
	unit *workspace.Unit,
	all []diag.Diagnostic,
	finding diag.Diagnostic,
	providers []analysis.Provider,
	ledger *Ledger,
) step {
	if e.opts.DisableBulk {
		return skipped()
	}
	if ledger.HasBulk(finding.ID) {
		e.logger.Error(ctx, "after applying a bulk fix, detected more instances of diagnostic",
			zap.String("diagnostic", finding.ID), zap.String("message", finding.Message))
		return fatal(fmt.Errorf("%s: %w", finding.ID, ErrBulkIncomplete))
	}

	instances := instancesOf(all, finding.ID)
	for _, p := range providers {
		fixer := bulkFixer(p)
		if fixer == nil || !analysis.Supports(fixer.SupportedIDs(), finding.ID) || !analysis.HasScope(fixer, analysis.ScopeProject) {
			continue
		}
		e.logger.Info(ctx, "calculating fix for multiple instances",
			zap.Int("instances", len(instances)),
			zap.String("diagnostic", finding.ID),
			zap.String("provider", p.Name()))

		var groups []analysis.EditGroup
		err := recoverAs(ErrProviderPanic, func() error {
			var err error
			groups, err = fixer.Groups(ctx, &analysis.BulkContext{
				Snapshot: snap,
				Unit:     unit,
				ID:       finding.ID,
				Scope:    analysis.ScopeProject,
				Findings: instances,
			})
			return err
		})
		if err != nil {
			return e.bulkFailed(ctx, p, finding, len(instances), err)
		}

		working := snap
		var (
			fixes []AppliedFix
			edits [][]diag.TextEdit
		)
		for _, g := range groups {
			if g.Build == nil {
				continue
			}
			var edit *analysis.Edit
			err := recoverAs(ErrProviderPanic, func() error {
				var err error
				edit, err = g.Build(ctx, working)
				return err
			})
			if err != nil {
				return e.bulkFailed(ctx, p, finding, len(g.Findings), err)
			}
			if edit.Empty() {
				e.logger.Error(ctx, "no applicable changes were provided for multiple instances",
					zap.Int("instances", len(g.Findings)),
					zap.String("diagnostic", finding.ID),
					zap.String("group", g.Title))
				continue
			}
			next, err := e.apply(ctx, working, edit)
			if err != nil {
				return e.bulkFailed(ctx, p, finding, len(g.Findings), err)
			}
			working = next
			edits = append(edits, edit.Changes)
			ledger.RecordBulk(finding.ID, len(g.Findings))
			e.metrics.Fixed(finding.ID, StrategyBulk, len(g.Findings))
			fixes = append(fixes, AppliedFix{
				ID:        finding.ID,
				Strategy:  StrategyBulk,
				Provider:  p.Name(),
				Title:     edit.Title,
				Instances: len(g.Findings),
				Version:   working.Version(),
			})
		}
		if len(fixes) > 0 {
			return step{outcome: Succeeded, snap: working, fixes: fixes, edits: edits}
		}
	}
	return skipped()
}

func (e *Engine) bulkFailed(ctx context.Context, p analysis.Provider, finding diag.Diagnostic, instances int, err error) step {
	e.logger.Error(ctx, "failed to apply fix for multiple instances",
		zap.Int("instances", instances),
		zap.String("diagnostic", finding.ID),
		zap.String("provider", p.Name()),
		zap.Error(err))
	return fatal(fmt.Errorf("bulk fix %s by %s: %w", finding.ID, p.Name(), err))
}

func bulkFixer(p analysis.Provider) analysis.BulkFixer {
	bp, ok := p.(analysis.BulkProvider)
	if !ok {
		return nil
	}
	return bp.BulkFixer()
}

func instancesOf(all []diag.Diagnostic, id string) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0)
	for _, d := range all {
		if d.ID == id && d.Severity != diag.SevHidden {
			out = append(out, d)
		}
	}
	return out
}
