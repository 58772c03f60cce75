package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"remedy/internal/config"
)

const configFileName = config.DefaultFile

var (
	errNoProjects           = errors.New("at least one project is required (-p PATH)")
	errDryRunNotImplemented = errors.New("--dry-run is not implemented")
	errUnitsFailed          = errors.New("some units could not be fixed")
)

// loadConfig reads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides cfg with every flag that was set explicitly.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, err = flags.GetInt(name)
		}
	}
	flag := func(name string, dst *bool) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, err = flags.GetBool(name)
		}
	}

	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)
	str("color", &cfg.Report.Color)
	str("report", &cfg.Report.Path)
	str("metrics-file", &cfg.Metrics.Textfile)
	str("cache-dir", &cfg.Cache.Dir)
	num("max-iterations", &cfg.Fix.MaxIterations)
	num("jobs", &cfg.Fix.Jobs)
	flag("fail-fast", &cfg.Fix.FailFast)
	flag("cache", &cfg.Cache.Enabled)
	flag("dry-run", &cfg.Fix.DryRun)
	if err == nil && flags.Lookup("no-bulk") != nil && flags.Changed("no-bulk") {
		var noBulk bool
		noBulk, err = flags.GetBool("no-bulk")
		cfg.Fix.Bulk = !noBulk
	}
	return err
}

// colorEnabled resolves the color mode for w; auto means "w is a terminal".
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorOn:
		return true
	case config.ColorOff:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
