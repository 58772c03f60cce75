package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"remedy/internal/logging"
	"remedy/internal/origin"
	"remedy/internal/registry"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [-p PATH...]",
		Short: "List rule origins, and the rules and fixes active for projects",
		Args:  cobra.NoArgs,
		RunE:  runRules,
	}
}

func runRules(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	catalog := origin.Builtin()
	printOrigins(out, catalog.Discover())

	paths, err := cmd.Flags().GetStringArray("project")
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.NewLoggerTo(&cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	ws, err := openWorkspace(ctx, paths, cfg, logger)
	if err != nil {
		return err
	}
	printIndex(out, registry.Build(ctx, ws.Current(), catalog, logger))
	return nil
}

func printOrigins(w io.Writer, origins []origin.Descriptor) {
	fmt.Fprintln(w, "origins:")
	for _, d := range origins {
		fmt.Fprintf(w, "  %-12s %s\n", d.Name, d.Path)
	}
}

func printIndex(w io.Writer, idx *registry.Index) {
	fmt.Fprintln(w, "rules:")
	for _, key := range idx.Keys {
		names := make([]string, 0, len(idx.Rules[key]))
		for _, r := range idx.Rules[key] {
			names = append(names, r.Name())
		}
		fmt.Fprintf(w, "  %-20s %s\n", key, strings.Join(names, ", "))
	}
	fmt.Fprintln(w, "fixable:")
	for _, key := range idx.Keys {
		for _, entry := range idx.Fixable[key] {
			names := make([]string, 0, len(entry.Providers))
			for _, p := range entry.Providers {
				names = append(names, p.Name())
			}
			fmt.Fprintf(w, "  %-20s %-10s %s\n", key, entry.ID, strings.Join(names, ", "))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(idx.Skipped)) {
		fmt.Fprintf(w, "skipped %s: %v\n", name, idx.Skipped[name])
	}
}
