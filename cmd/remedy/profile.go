package main

import (
	"github.com/spf13/cobra"

	"remedy/internal/prof"
)

// startProfiling enables the profilers requested through the persistent flags.
func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	var opts prof.Options
	for name, dst := range map[string]*string{
		"cpu-profile":   &opts.CPU,
		"mem-profile":   &opts.Mem,
		"runtime-trace": &opts.Trace,
	} {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return prof.Start(opts)
}
