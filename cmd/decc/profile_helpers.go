package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decc/internal/prof"
)

// setupProfiling starts the profilers requested by flags. The cleanup is
// idempotent.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	pf := cmd.Root().PersistentFlags()
	cpuProfile, err := pf.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := pf.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := pf.GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	var p prof.Profiler
	if cpuProfile != "" {
		if err := p.StartCPU(cpuProfile); err != nil {
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
	}
	if tracePath != "" {
		if err := p.StartTrace(tracePath); err != nil {
			_ = p.StopCPU()
			return nil, fmt.Errorf("failed to start runtime trace: %w", err)
		}
	}
	writeMem := func() {}
	if memProfile != "" {
		writeMem = func() {
			if err := prof.WriteMem(memProfile); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
			}
		}
	}

	done := false
	return func() {
		if done {
			return
		}
		done = true
		if err := p.StopTrace(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close runtime trace: %v\n", err)
		}
		if err := p.StopCPU(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close cpu profile: %v\n", err)
		}
		writeMem()
	}, nil
}

// withSetup runs the shared pre-command setup and returns one cleanup.
func withSetup(cmd *cobra.Command) (colored bool, cleanup func(), err error) {
	colored, err = setupColor(cmd)
	if err != nil {
		return false, nil, err
	}
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return false, nil, err
	}
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		stopProf()
		return false, nil, err
	}
	return colored, func() {
		stopTrace()
		stopProf()
	}, nil
}
