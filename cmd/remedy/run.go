package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"remedy/internal/config"
	"remedy/internal/driver"
	"remedy/internal/fix"
	"remedy/internal/logging"
	"remedy/internal/observ"
	"remedy/internal/origin"
	"remedy/internal/report"
	"remedy/internal/version"
	"remedy/internal/workspace"
)

func runRemedy(cmd *cobra.Command, _ []string) error {
	paths, err := cmd.Flags().GetStringArray("project")
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errNoProjects
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Fix.DryRun {
		return errDryRunNotImplemented
	}
	profiling, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = profiling.Stop() }()

	logger, err := logging.NewLoggerTo(&cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	ctx := logging.WithRunID(cmd.Context(), runID)

	ws, err := openWorkspace(ctx, paths, cfg, logger)
	if err != nil {
		return err
	}

	var cache *driver.Cache
	if cfg.Cache.Enabled {
		if cache, err = driver.OpenCache(cfg.Cache.Dir); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}
	metrics := observ.NewMetrics()
	d := driver.New(origin.Builtin(), logger, metrics, driver.Options{
		Fix: fix.Options{
			MaxIterations: cfg.Fix.MaxIterations,
			DisableBulk:   !cfg.Fix.Bulk,
		},
		FailFast: cfg.Fix.FailFast,
		Cache:    cache,
	})

	out, runErr := d.Run(ctx, ws)

	w := cmd.OutOrStdout()
	if err := report.Pretty(w, out.Results, report.PrettyOpts{Color: colorEnabled(cfg.Report.Color, w)}); err != nil {
		return err
	}
	if err := report.Summary(w, out.Results); err != nil {
		return err
	}
	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		fmt.Fprint(cmd.ErrOrStderr(), out.Timings.Summary())
	}
	if err := writeArtifacts(ctx, cfg, runID, out, metrics, logger); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if out.Failed() {
		return errUnitsFailed
	}
	return nil
}

func openWorkspace(ctx context.Context, paths []string, cfg *config.Config, logger *logging.Logger) (*workspace.Workspace, error) {
	onFailure := func(f workspace.Failure) {
		logger.Warn(ctx, "workspace failure",
			zap.String("unit", string(f.Unit)),
			zap.String("path", f.Path),
			zap.Error(f.Err))
	}
	ws, err := workspace.Open(ctx, paths,
		workspace.WithJobs(cfg.Fix.Jobs),
		workspace.WithFailureHandler(onFailure))
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	return ws, nil
}

// writeArtifacts writes the JSON report and the metrics textfile when configured.
func writeArtifacts(ctx context.Context, cfg *config.Config, runID string, out *driver.Outcome, metrics *observ.Metrics, logger *logging.Logger) error {
	if cfg.Report.Path != "" {
		r := report.Build(report.Meta{RunID: runID, Version: version.Version}, out.Results)
		if err := report.WriteFile(cfg.Report.Path, r); err != nil {
			return err
		}
		logger.Info(ctx, "report written", zap.String("path", cfg.Report.Path))
	}
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
