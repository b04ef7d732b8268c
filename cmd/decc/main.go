package main

import (
	"os"

	"github.com/spf13/cobra"

	"decc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "decc",
	Short:         "Declaration collector and monomorphizer",
	Long:          `decc collects typed declarations from fixture files, resolves scopes and instantiates generics.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(scopeCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "print phase timings to stderr")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to keep")
	pf.Int("jobs", 0, "parallel fixture decoders (0 = GOMAXPROCS)")
	pf.String("cache-dir", "", "summary cache directory (empty disables the cache)")

	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson); auto picks ndjson for .ndjson/.jsonl outputs")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
