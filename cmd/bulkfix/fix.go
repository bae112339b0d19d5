package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bulkfix/internal/diagfmt"
	"bulkfix/internal/runner"
)

type fixOptions struct {
	mode      runner.Mode
	ids       []string
	prefer    string
	jobs      int
	format    string
	ui        uiMode
	cache     bool
	noBulk    bool
	recursive bool
}

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [flags] [path]",
		Short: "Apply one fix per diagnostic category",
		Long: `Collect diagnostics for the project containing path, choose one fix per
category and apply it to every occurrence. With --verify nothing is written
and the command exits with status 2 when something would change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFix,
	}
	cmd.Flags().Bool("verify", false, "report what would change without writing (exit 2 if anything would)")
	cmd.Flags().StringSlice("id", nil, "only fix these categories (overrides [fix].only)")
	cmd.Flags().String("prefer", "", "preferred fix title prefix (overrides [fix].prefer)")
	cmd.Flags().Int("jobs", 0, "max projects processed in parallel (0=auto)")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	cmd.Flags().Bool("cache", false, "reuse cached diagnostics for unchanged projects")
	cmd.Flags().Bool("no-bulk", false, "never use bulk fixes, apply one occurrence at a time")
	cmd.Flags().BoolP("recursive", "r", false, "run every project found under path")
	return cmd
}

func readFixOptions(cmd *cobra.Command) (fixOptions, error) {
	var opts fixOptions
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return opts, err
	}
	if verify {
		opts.mode = runner.ModeVerify
	}
	if opts.ids, err = cmd.Flags().GetStringSlice("id"); err != nil {
		return opts, err
	}
	if opts.prefer, err = cmd.Flags().GetString("prefer"); err != nil {
		return opts, err
	}
	if opts.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return opts, err
	}
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, err
	}
	opts.format = strings.ToLower(opts.format)
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = parseUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.cache, err = cmd.Flags().GetBool("cache"); err != nil {
		return opts, err
	}
	if opts.noBulk, err = cmd.Flags().GetBool("no-bulk"); err != nil {
		return opts, err
	}
	if opts.recursive, err = cmd.Flags().GetBool("recursive"); err != nil {
		return opts, err
	}
	return opts, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	opts, err := readFixOptions(cmd)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	color, err := useColor(cmd)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer dumpTraceOnPanic(cmd)

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	manifests, err := findManifests(path, opts.recursive)
	if err != nil {
		return err
	}

	warns := &warnings{}
	cache := openCache(opts.cache, warns.forProject(""))
	jobs := make([]runner.Job, 0, len(manifests))
	var loadErrs []error
	for _, manifestPath := range manifests {
		p, err := loadProject(manifestPath, opts.ids, opts.prefer, warns)
		if err != nil {
			loadErrs = append(loadErrs, err)
			continue
		}
		jobs = append(jobs, runner.Job{
			Name:     p.name(),
			Snapshot: p.snapshot,
			Registry: p.registry,
			Options: runner.Options{
				Mode:    opts.mode,
				Filter:  p.filter,
				Prefer:  p.prefer,
				Cache:   cache,
				Warn:    warns.forProject(p.name()),
				NoBulk:  opts.noBulk,
				Project: p.name(),
			},
		})
	}

	var results []runner.Result
	interrupted := false
	if len(jobs) > 0 {
		if opts.ui.enabled(cmd.OutOrStdout()) && opts.format == "pretty" && !quiet {
			results, err = runWithUI(cmd.Context(), "bulkfix "+opts.mode.String(), jobs, opts.jobs)
			interrupted = errors.Is(err, errCancelled)
			if err != nil && !interrupted {
				return err
			}
		} else {
			results = runner.RunAll(cmd.Context(), jobs, opts.jobs)
		}
	}

	if !quiet {
		warns.flush(cmd.ErrOrStderr())
	}
	if err := renderFixResults(cmd, results, opts, diagfmt.PrettyOpts{Color: color, Timings: timings}, quiet); err != nil {
		return err
	}
	return fixStatus(results, loadErrs, interrupted)
}

func renderFixResults(cmd *cobra.Command, results []runner.Result, opts fixOptions, pretty diagfmt.PrettyOpts, quiet bool) error {
	out := cmd.OutOrStdout()
	if opts.format == "json" {
		run := diagfmt.RunJSON{}
		for _, r := range results {
			run.Projects = append(run.Projects, diagfmt.BuildOutcome(r.Name, r.Outcome, r.Err, pretty.Timings))
			run.Pending = run.Pending || r.Outcome.ChangesPending()
		}
		return diagfmt.Run(out, run)
	}
	if quiet {
		return nil
	}
	for _, r := range results {
		if r.Outcome == nil {
			continue
		}
		if err := diagfmt.Outcome(out, r.Outcome, pretty); err != nil {
			return err
		}
	}
	return nil
}

// fixStatus folds per-project results into the command error: failures
// first, then interruption, then pending changes.
func fixStatus(results []runner.Result, loadErrs []error, interrupted bool) error {
	errs := append([]error(nil), loadErrs...)
	cancelled, pending := interrupted, false
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
		if r.Outcome != nil {
			cancelled = cancelled || r.Outcome.Cancelled
			pending = pending || r.Outcome.ChangesPending()
		}
	}
	switch {
	case len(errs) > 0:
		return errors.Join(errs...)
	case cancelled:
		return errCancelled
	case pending:
		return errChangesPending
	}
	return nil
}
