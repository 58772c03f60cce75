package fix

import (
	"context"
	"errors"
	"fmt"
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

// Options tune the remediation loop.
type Options struct {
	// MaxIterations caps the number of selected findings per unit; 0 is unbounded.
	MaxIterations int
	// DisableBulk skips the bulk strategy.
	DisableBulk bool
}

// Engine runs the remediation loop.
type Engine struct {
	selector *Selector
	logger   *logging.Logger
	metrics  *observ.Metrics
	opts     Options
}

// NewEngine creates an engine. logger and metrics may be nil.
func NewEngine(logger *logging.Logger, metrics *observ.Metrics, opts Options) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{
		selector: NewSelector(logger),
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// step is the result of one strategy attempt.
type step struct {
	outcome Outcome
	snap    *workspace.Snapshot
	err     error
	fixes   []AppliedFix
	// edits holds the committed changes, one batch per applied edit.
	edits [][]diag.TextEdit
}

func skipped() step { return step{outcome: Skipped} }

func fatal(err error) step { return step{outcome: Fatal, err: err} }

// Run fixes the unit until no fixable finding is left or a strategy fails
// fatally. The returned result is never nil.
func (e *Engine) Run(ctx context.Context, ws *workspace.Workspace, unitID workspace.UnitID, ui *registry.UnitIndex) (res *Result) {
	res = &Result{Unit: unitID, Ledger: NewLedger()}
	ctx, span := observ.StartSpan(ctx, "fix.Run", attribute.String("unit", string(unitID)))
	defer func() {
		res.Snapshot = ws.Current()
		observ.EndSpan(span, res.Err)
		e.metrics.Unit(res.Status.String())
	}()

	if ui == nil {
		ui = &registry.UnitIndex{}
	}
	excluded := make(exclusions)
	var lastSingle *diag.Fingerprint

	for {
		if err := ctx.Err(); err != nil {
			return e.fail(ctx, res, err)
		}
		snap := ws.Current()
		unit, ok := snap.Unit(unitID)
		if !ok {
			return e.fail(ctx, res, fmt.Errorf("unit %s is not part of the workspace", unitID))
		}

		all, next, err := e.selector.Next(ctx, snap, unit, ui, excluded)
		if err != nil {
			return e.fail(ctx, res, err)
		}
		res.Outstanding = visible(all)
		if next == nil {
			return e.finish(ctx, res)
		}

		finding := *next
		fp := finding.Fingerprint(snap.FileSet())
		if lastSingle != nil && *lastSingle == fp {
			return e.fail(ctx, res, fmt.Errorf("%s: %w", fp, ErrNoProgress))
		}
		lastSingle = nil

		if e.opts.MaxIterations > 0 && res.Iterations >= e.opts.MaxIterations {
			return e.fail(ctx, res, fmt.Errorf("%d iterations: %w", res.Iterations, ErrIterationLimit))
		}
		res.Iterations++
		e.metrics.Iteration(unit.Name)
		e.metrics.Selected(finding.ID)

		providers := ui.Providers[finding.ID]
		st := e.attempt(ctx, StrategyBulk, func() step {
			return e.tryFixAll(ctx, snap, unit, all, finding, providers, res.Ledger)
		})
		if st.outcome == Skipped {
			st = e.attempt(ctx, StrategySingle, func() step {
				return e.tryFixOne(ctx, snap, unit, finding, providers, res.Ledger)
			})
			if st.outcome == Succeeded {
				lastSingle = &fp
			}
		}

		switch st.outcome {
		case Fatal:
			return e.fail(ctx, res, st.err)
		case Succeeded:
			if err := e.commit(ctx, ws, st.snap); err != nil {
				return e.fail(ctx, res, err)
			}
			res.Applied = append(res.Applied, st.fixes...)
			excluded.shift(snap.FileSet(), st.edits)
		case Skipped:
			e.logger.Warn(ctx, "no provider could fix diagnostic",
				zap.String("diagnostic", finding.ID),
				zap.String("location", location(snap, finding)),
				zap.String("message", finding.Message))
			res.Unresolved = append(res.Unresolved, finding)
			excluded.add(fp)
		}
	}
}

func (e *Engine) attempt(ctx context.Context, strategy string, fn func() step) step {
	start := time.Now()
	st := fn()
	e.metrics.Strategy(ctx, strategy, st.outcome.String(), time.Since(start))
	return st
}

// commit makes next current. A cancelled context never commits.
func (e *Engine) commit(ctx context.Context, ws *workspace.Workspace, next *workspace.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ws.Commit(next); err != nil {
		e.logger.Error(ctx, "failed to apply changes to workspace", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	e.metrics.Committed(ctx)
	return nil
}

// apply is the single application primitive shared by both strategies.
func (e *Engine) apply(ctx context.Context, snap *workspace.Snapshot, edit *analysis.Edit) (*workspace.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	next, err := snap.Apply(edit.Changes)
	if err != nil {
		return nil, fmt.Errorf("apply %q: %w", edit.Title, err)
	}
	return next, nil
}

func (e *Engine) finish(ctx context.Context, res *Result) *Result {
	if len(res.Unresolved) > 0 {
		res.Status = StatusFailure
		res.Err = fmt.Errorf("%d findings: %w", len(res.Unresolved), ErrUnresolved)
		e.logger.Warn(ctx, "unit finished with unresolved findings",
			zap.Int("unresolved", len(res.Unresolved)), zap.Int("iterations", res.Iterations))
		return res
	}
	res.Status = StatusSuccess
	e.logger.Info(ctx, "unit converged",
		zap.Int("iterations", res.Iterations), zap.Int("fixed", res.Ledger.Total()))
	return res
}

func (e *Engine) fail(ctx context.Context, res *Result, err error) *Result {
	res.Status = StatusFailure
	res.Err = err
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e.logger.Warn(ctx, "remediation cancelled", zap.Error(err))
		return res
	}
	e.logger.Error(ctx, "remediation failed", zap.Error(err), zap.Int("iterations", res.Iterations))
	return res
}

// location renders the finding position as path:line:col.
func location(snap *workspace.Snapshot, d diag.Diagnostic) string {
	fs := snap.FileSet()
	f := fs.Get(d.Primary.File)
	if f == nil {
		return "?"
	}
	start, _ := fs.Resolve(d.Primary)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath("relative", fs.BaseDir()), start.Line, start.Col)
}
