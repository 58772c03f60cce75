package fix

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/workspace"
)

// tryFixOne fixes the selected instance with the first provider that returns
// an applicable edit.
func (e *Engine) tryFixOne(
	ctx context.Context,
	snap *workspace.Snapshot,
	unit *workspace.Unit,
	finding diag.Diagnostic,
	providers []analysis.Provider,
	ledger *Ledger,
) step {
	file, ok := snap.Lookup(finding.Primary.File)
	if !ok {
		return fatal(fmt.Errorf("%s at %s: %w", finding.ID, finding.Primary, ErrMissingFile))
	}
	loc := location(snap, finding)
	e.logger.Info(ctx, "applying fix for diagnostic",
		zap.String("diagnostic", finding.ID),
		zap.String("location", loc),
		zap.String("message", finding.Message))

	fc := &analysis.FixContext{Snapshot: snap, Unit: unit, File: file, Finding: finding}
	for _, p := range providers {
		var edit *analysis.Edit
		err := recoverAs(ErrProviderPanic, func() error {
			var err error
			edit, err = p.Fix(ctx, fc)
			return err
		})
		if err != nil {
			return e.singleFailed(ctx, p, finding, loc, err)
		}
		if edit == nil {
			e.logger.Debug(ctx, "provider declined", zap.String("provider", p.Name()), zap.String("diagnostic", finding.ID))
			continue
		}
		if edit.Empty() {
			e.logger.Error(ctx, "no applicable changes were provided",
				zap.String("location", loc),
				zap.String("title", edit.Title),
				zap.String("diagnostic", finding.ID),
				zap.String("provider", p.Name()))
			continue
		}
		next, err := e.apply(ctx, snap, edit)
		if err != nil {
			return e.singleFailed(ctx, p, finding, loc, err)
		}
		ledger.RecordSingle(finding.ID)
		e.metrics.Fixed(finding.ID, StrategySingle, 1)
		return step{
			outcome: Succeeded,
			snap:    next,
			fixes: []AppliedFix{{
				ID:        finding.ID,
				Strategy:  StrategySingle,
				Provider:  p.Name(),
				Title:     edit.Title,
				Instances: 1,
				Version:   next.Version(),
			}},
			edits: [][]diag.TextEdit{edit.Changes},
		}
	}
	return skipped()
}

func (e *Engine) singleFailed(ctx context.Context, p analysis.Provider, finding diag.Diagnostic, loc string, err error) step {
	e.logger.Error(ctx, "failed to apply fix",
		zap.String("location", loc),
		zap.String("diagnostic", finding.ID),
		zap.String("provider", p.Name()),
		zap.Error(err))
	return fatal(fmt.Errorf("fix %s at %s by %s: %w", finding.ID, loc, p.Name(), err))
}
