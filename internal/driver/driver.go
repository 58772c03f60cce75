// Package driver runs the remediation loop over every unit of a workspace.
package driver

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"remedy/internal/fix"
	"remedy/internal/logging"
	"remedy/internal/observ"
	"remedy/internal/origin"
	"remedy/internal/project"
	"remedy/internal/registry"
	"remedy/internal/workspace"
)

// Options configure a Driver.
type Options struct {
	Fix fix.Options
	// FailFast stops after the first failed unit.
	FailFast bool
	// Cache skips units that converged before with the same inputs. Nil disables it.
	Cache *Cache
}

// Driver builds the registry once and fixes units one at a time, in workspace order.
type Driver struct {
	loader  origin.Loader
	logger  *logging.Logger
	metrics *observ.Metrics
	engine  *fix.Engine
	opts    Options
}

// New creates a driver. logger and metrics may be nil.
func New(loader origin.Loader, logger *logging.Logger, metrics *observ.Metrics, opts Options) *Driver {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Driver{
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		engine:  fix.NewEngine(logger.Named("fix"), metrics, opts.Fix),
		opts:    opts,
	}
}

// Outcome collects the results of a run.
type Outcome struct {
	Index   *registry.Index
	Results []*fix.Result
	// Cached lists the units skipped because the cache knew them as converged.
	Cached  []workspace.UnitID
	Timings observ.Report
}

// Failed reports whether any unit failed.
func (o *Outcome) Failed() bool {
	for _, res := range o.Results {
		if !res.Succeeded() {
			return true
		}
	}
	return false
}

// Run fixes every unit of ws. Unit failures are reported through the outcome;
// the returned error is only set when ctx is done.
func (d *Driver) Run(ctx context.Context, ws *workspace.Workspace) (*Outcome, error) {
	ctx, span := observ.StartSpan(ctx, "driver.Run")
	timer := observ.NewTimer()
	out := &Outcome{}
	var runErr error
	defer func() {
		out.Timings = timer.Report()
		observ.EndSpan(span, runErr)
	}()

	_ = timer.Measure("registry", func() error {
		out.Index = registry.Build(ctx, ws.Current(), d.loader, d.logger.Named("registry"))
		return nil
	})
	d.logger.Debug(ctx, "registry built",
		zap.Strings("origins", out.Index.Origins),
		zap.Int("keys", len(out.Index.Keys)),
		zap.Int("skipped", len(out.Index.Skipped)))

	for _, unit := range ws.Current().Units() {
		if err := ctx.Err(); err != nil {
			runErr = err
			return out, err
		}
		unitCtx := logging.WithUnit(ctx, unit.Name)

		var (
			res    *fix.Result
			cached bool
		)
		_ = timer.Measure("unit "+unit.Name, func() error {
			res, cached = d.runUnit(unitCtx, ws, out.Index, unit.ID)
			return res.Err
		})
		if cached {
			out.Cached = append(out.Cached, unit.ID)
		}
		out.Results = append(out.Results, res)

		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			runErr = res.Err
			return out, res.Err
		}
		if !res.Succeeded() && d.opts.FailFast {
			d.logger.Warn(unitCtx, "stopping after failed unit", zap.Error(res.Err))
			break
		}
	}
	return out, nil
}

func (d *Driver) runUnit(ctx context.Context, ws *workspace.Workspace, idx *registry.Index, id workspace.UnitID) (*fix.Result, bool) {
	ctx, span := observ.StartSpan(ctx, "driver.Unit", attribute.String("unit", string(id)))
	defer span.End()

	snap := ws.Current()
	unit, _ := snap.Unit(id)
	rules := ruleSet(idx, unit)

	key := project.UnitDigest(snap, unit, rules)
	entry, hit, err := d.opts.Cache.Get(key)
	if err != nil {
		d.logger.Warn(ctx, "cache read failed", zap.Error(err))
	}
	if hit {
		d.logger.Info(ctx, "unit unchanged since it last converged",
			zap.Time("converged_at", entry.ConvergedAt), zap.String("digest", key.String()))
		d.metrics.Unit("cached")
		return &fix.Result{
			Unit:     id,
			Status:   fix.StatusSuccess,
			Ledger:   fix.NewLedger(),
			Snapshot: snap,
		}, true
	}

	res := d.engine.Run(ctx, ws, id, idx.ForUnit(unit))
	if res.Succeeded() && d.opts.Cache != nil {
		d.remember(ctx, res, rules)
	}
	return res, false
}

// remember stores the converged state of the unit, keyed by its final content.
func (d *Driver) remember(ctx context.Context, res *fix.Result, rules []string) {
	snap := res.Snapshot
	unit, ok := snap.Unit(res.Unit)
	if !ok {
		return
	}
	entry := &Entry{
		Unit:        string(unit.ID),
		Name:        unit.Name,
		Rules:       rules,
		Fixed:       res.Ledger.Total(),
		Iterations:  res.Iterations,
		ConvergedAt: time.Now().UTC(),
	}
	for _, f := range snap.Files(unit) {
		entry.FilePaths = append(entry.FilePaths, f.Path)
		entry.FileHashes = append(entry.FileHashes, project.Digest(f.Hash))
	}
	key := project.UnitDigest(snap, unit, rules)
	if err := d.opts.Cache.Put(key, entry); err != nil {
		d.logger.Warn(ctx, "cache write failed", zap.Error(err))
		return
	}
	d.logger.Debug(ctx, "unit cached", zap.String("digest", key.String()))
}

// ruleSet lists the loaded origins the unit refers to as "origin@version".
func ruleSet(idx *registry.Index, unit *workspace.Unit) []string {
	out := make([]string, 0, len(unit.RuleRefs))
	for _, ref := range unit.RuleRefs {
		if v, ok := idx.Versions[ref.Origin]; ok {
			out = append(out, ref.Origin+"@"+v)
		}
	}
	return out
}
