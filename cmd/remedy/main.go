package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	_ "remedy/internal/rules/gofmt"
	_ "remedy/internal/rules/text"
	"remedy/internal/version"
)

// newRootCmd builds the command tree. The root command runs remediation.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "remedy -p PATH [-p PATH...]",
		Short: "Apply automated fixes to the projects of a workspace",
		Long: `remedy analyzes every project named with -p, then repeatedly picks the next
fixable finding and applies a fix until nothing fixable is left.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRemedy,
	}
	root.Version = version.Version

	root.PersistentFlags().StringArrayP("project", "p", nil, "project manifest or directory (repeatable)")
	root.PersistentFlags().String("config", "", "configuration file (default ./"+configFileName+" when present)")
	root.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	root.PersistentFlags().String("log-format", "", "log format (console|json)")
	root.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a runtime trace to this file")

	root.Flags().String("report", "", "write a JSON run report to this file")
	root.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	root.Flags().Int("max-iterations", 0, "maximum findings fixed per unit (0 = unbounded)")
	root.Flags().Bool("no-bulk", false, "fix one instance at a time")
	root.Flags().Bool("fail-fast", false, "stop after the first failed unit")
	root.Flags().Bool("cache", false, "skip units that converged before with the same content")
	root.Flags().String("cache-dir", "", "cache directory")
	root.Flags().Int("jobs", 0, "projects loaded concurrently")
	root.Flags().Bool("timings", false, "show timing information")
	root.Flags().Bool("dry-run", false, "report fixes without writing them")
	_ = root.Flags().MarkHidden("dry-run")

	root.AddCommand(newRulesCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main runs the CLI and exits with status 1 on any error, including units that
// could not be fixed.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, errUnitsFailed) {
		fmt.Fprintf(os.Stderr, "remedy: %v\n", err)
	}
	os.Exit(1)
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
