package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"decc/internal/diag"
	"decc/internal/diagfmt"
	"decc/internal/driver"
	"decc/internal/pretty"
	"decc/internal/project"
	"decc/internal/ty"
)

const noManifestMessage = "no decc.toml found\nlist the fixture files explicitly, e.g.:\n  decc collect main.toml"

var (
	collectSummary    bool
	collectDiagFormat string
	collectProgress   bool
)

func init() {
	collectCmd.Flags().BoolVar(&collectSummary, "summary", false, "print a declaration summary instead of the typed tree")
	collectCmd.Flags().StringVar(&collectDiagFormat, "diag-format", "pretty", "diagnostics format (pretty|json)")
	collectCmd.Flags().BoolVar(&collectProgress, "progress", false, "show per-file progress on a terminal")
}

var collectCmd = &cobra.Command{
	Use:   "collect [FILE...]",
	Short: "Collect fixture files and print the typed program",
	Long:  "Collect fixture files and print the typed program. Without arguments the files listed in the nearest decc.toml are used.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if collectDiagFormat != "pretty" && collectDiagFormat != "json" {
			return fmt.Errorf("unknown diag-format %q (expected pretty or json)", collectDiagFormat)
		}
		colored, cleanup, err := withSetup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		return runCollect(cmd, args, colored)
	},
}

// errDiagnostics makes the process exit non-zero after the diagnostics
// have already been printed.
var errDiagnostics = errors.New("collection reported errors")

func runCollect(cmd *cobra.Command, paths []string, colored bool) error {
	ctx := cmd.Context()
	pf := cmd.Root().PersistentFlags()
	maxDiag, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := pf.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	timings, err := pf.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		m, ok, err := project.Load(".")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(noManifestMessage)
		}
		paths = m.Files()
		if limit := m.Config.Project.MaxDiagnostics; limit > 0 && !pf.Changed("max-diagnostics") {
			maxDiag = limit
		}
	}

	s := driver.NewSession(driver.Options{MaxDiagnostics: maxDiag})
	if timings {
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), s.Timer.Summary()) }()
	}

	run := func(sink driver.ProgressSink) collectOutcome {
		var out collectOutcome
		s.Progress = sink
		if out.err = s.Timer.Time("load", func() error {
			var lerr error
			out.fixtures, lerr = driver.LoadFixturesProgress(ctx, paths, jobs, sink)
			return lerr
		}); out.err != nil {
			return out
		}
		out.key = driver.CombineDigest(out.fixtures, s.Bag.Max())
		if collectSummary && cache != nil {
			var sum driver.Summary
			ok, err := cache.Get(out.key, &sum)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", err)
			}
			if ok {
				out.cached = &sum
				return out
			}
		}
		out.app, out.collectErr = s.Collect(ctx, out.fixtures)
		return out
	}

	var out collectOutcome
	if collectProgress && isTerminal(os.Stderr) {
		if out, err = runWithProgress(cmd.ErrOrStderr(), "collect", paths, run); err != nil {
			return err
		}
	} else {
		out = run(nil)
	}
	if out.err != nil {
		return out.err
	}
	if out.cached != nil {
		return printSummary(cmd.OutOrStdout(), cmd.ErrOrStderr(), *out.cached)
	}
	return printCollected(cmd, s, out, colored, func(sum driver.Summary) {
		if err := cache.Put(out.key, &sum); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache: %v\n", err)
		}
	})
}

// collectOutcome is what a load and collect run produced. cached is set
// when the summary came from the cache and nothing was collected.
type collectOutcome struct {
	fixtures   []driver.Fixture
	key        driver.Digest
	cached     *driver.Summary
	app        ty.Application
	collectErr error
	err        error
}

func printCollected(cmd *cobra.Command, s *driver.Session, out collectOutcome, colored bool, store func(driver.Summary)) error {
	sum, err := s.Summary()
	if err != nil {
		return err
	}
	store(sum)

	if collectSummary {
		return printSummary(cmd.OutOrStdout(), cmd.ErrOrStderr(), sum)
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), s.Bag.Items(), colored); err != nil {
		return err
	}
	text, err := pretty.New(s.Types, s.Decls, s.Graph, colored).Application(out.app)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	if out.collectErr != nil {
		return errDiagnostics
	}
	return nil
}

func openCache(cmd *cobra.Command) (*driver.SummaryCache, error) {
	dir, err := cmd.Root().PersistentFlags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if dir == "" {
		return nil, nil
	}
	return driver.OpenSummaryCache(dir)
}

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	fileLabel  = color.New(color.Bold)
	dimLabel   = color.New(color.FgHiBlack)
)

func printDiagnostics(w io.Writer, items []*diag.Error, colored bool) error {
	if collectDiagFormat == "json" {
		return diagfmt.JSON(w, items, diagfmt.JSONOpts{IncludeCause: true})
	}
	diagfmt.Pretty(w, items, diagfmt.PrettyOpts{Color: colored, ShowCause: true})
	return nil
}

func printSummary(out, errOut io.Writer, sum driver.Summary) error {
	for _, d := range sum.Diagnostics {
		fmt.Fprintf(errOut, "%s %s\n", errorLabel.Sprint("error:"), d.Message)
	}
	for _, f := range sum.Files {
		fmt.Fprintf(out, "%s\n", fileLabel.Sprint(f.Name))
		for _, d := range f.Declarations {
			line := fmt.Sprintf("  %-10s %s", d.Kind, d.Name)
			if d.Type != "" {
				line += ": " + d.Type
			}
			for _, in := range d.Instances {
				line += dimLabel.Sprintf("  <%s>", in)
			}
			fmt.Fprintln(out, line)
		}
	}
	fmt.Fprintf(out, "%d types, %d declarations, %d nodes, %d instances\n",
		sum.Types, sum.Declarations, sum.Nodes, sum.Instances)
	if len(sum.Diagnostics) > 0 {
		return errDiagnostics
	}
	return nil
}
