package fix

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"remedy/internal/analysis"
	"remedy/internal/diag"
	"remedy/internal/logging"
	"remedy/internal/observ"
	"remedy/internal/registry"
	"remedy/internal/workspace"
)

// Selector analyzes a unit and picks the next finding to fix.
type Selector struct {
	logger *logging.Logger
}

// NewSelector creates a selector. A nil logger discards output.
func NewSelector(logger *logging.Logger) *Selector {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Selector{logger: logger}
}

// Next runs every active rule of the unit sequentially and returns all findings
// in reported order together with the first one that is visible, has
// providers and is not excluded. A nil next means nothing is left to fix.
//
// Rule failures are logged and the rule's partial findings kept; only
// cancellation is returned as an error.
func (s *Selector) Next(
	ctx context.Context,
	snap *workspace.Snapshot,
	unit *workspace.Unit,
	ui *registry.UnitIndex,
	exclude map[diag.Fingerprint]struct{},
) (all []diag.Diagnostic, next *diag.Diagnostic, err error) {
	ctx, span := observ.StartSpan(ctx, "fix.Select", attribute.String("unit", unit.Name))
	defer func() { observ.EndSpan(span, err) }()

	start := time.Now()
	bag := diag.NewBag(0)
	files := snap.Files(unit)
	for _, rule := range ui.Rules {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		pass := &analysis.Pass{
			Snapshot: snap,
			Unit:     unit,
			Files:    files,
			Reporter: diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		}
		ruleErr := recoverAs(ErrRulePanic, func() error {
			return rule.Analyze(ctx, pass)
		})
		if ruleErr == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		s.logger.Warn(ctx, "rule failed", zap.String("rule", rule.Name()), zap.Error(ruleErr))
	}

	all = bag.Items()
	fs := snap.FileSet()
	for i := range all {
		d := &all[i]
		if d.Severity == diag.SevHidden || !ui.HasProviders(d.ID) {
			continue
		}
		if _, skip := exclude[d.Fingerprint(fs)]; skip {
			continue
		}
		next = d
		break
	}

	elapsed := time.Since(start)
	if next == nil {
		s.logger.Debug(ctx, "did not find more fixable diagnostics", zap.Duration("elapsed", elapsed))
		return all, nil, nil
	}
	s.logger.Debug(ctx, "found fixable diagnostic", zap.String("diagnostic", next.ID), zap.Duration("elapsed", elapsed))
	return all, next, nil
}

// visible filters out hidden findings.
func visible(all []diag.Diagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(all))
	for _, d := range all {
		if d.Severity != diag.SevHidden {
			out = append(out, d)
		}
	}
	return out
}
