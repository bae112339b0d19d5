package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bulkfix/internal/collect"
	"bulkfix/internal/diag"
	"bulkfix/internal/diagfmt"
)

func newDiagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag [flags] [path]",
		Short: "List diagnostics without fixing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDiag,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().StringSlice("id", nil, "only report these categories (overrides [fix].only)")
	cmd.Flags().Int("max-diagnostics", 0, "maximum number of diagnostics per project (0=unlimited)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("no-snippet", false, "do not print the offending source line")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("cache", false, "reuse cached diagnostics for unchanged projects")
	cmd.Flags().BoolP("recursive", "r", false, "report every project found under path")
	return cmd
}

// projectDiagnostics is one entry of `diag --format json`.
type projectDiagnostics struct {
	Project string `json:"project"`
	diagfmt.DiagnosticsOutput
	CompileError string `json:"compile_error,omitempty"`
	Truncated    int    `json:"truncated,omitempty"`
	Duplicates   int    `json:"duplicates,omitempty"`
}

func runDiag(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or short)", format)
	}
	ids, err := flags.GetStringSlice("id")
	if err != nil {
		return err
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	withNotes, err := flags.GetBool("with-notes")
	if err != nil {
		return err
	}
	noSnippet, err := flags.GetBool("no-snippet")
	if err != nil {
		return err
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return err
	}
	useCache, err := flags.GetBool("cache")
	if err != nil {
		return err
	}
	recursive, err := flags.GetBool("recursive")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
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
	manifests, err := findManifests(path, recursive)
	if err != nil {
		return err
	}

	pathMode := diagfmt.PathModeRelative
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	warns := &warnings{}
	cache := openCache(useCache, warns.forProject(""))
	out := cmd.OutOrStdout()

	var (
		errs     []error
		reports  []projectDiagnostics
		multiple = len(manifests) > 1
	)
	for _, manifestPath := range manifests {
		p, err := loadProject(manifestPath, ids, "", warns)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := collect.Collect(cmd.Context(), p.snapshot, p.registry.Analyzers(), collect.Options{
			Filter:         p.filter,
			Cache:          cache,
			Warn:           warns.forProject(p.name()),
			MaxDiagnostics: maxDiagnostics,
		})
		if err != nil {
			if cmd.Context().Err() != nil {
				return errCancelled
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.name(), err))
			continue
		}

		if format == "json" {
			report := projectDiagnostics{
				Project: p.name(),
				DiagnosticsOutput: diagfmt.BuildDiagnosticsOutput(res.Diagnostics, p.snapshot, diagfmt.JSONOpts{
					IncludePositions: true,
					PathMode:         pathMode,
					IncludeNotes:     withNotes,
				}),
				Truncated:  res.Truncated,
				Duplicates: res.Duplicates,
			}
			if res.CompileErr != nil {
				report.CompileError = res.CompileErr.Error()
			}
			reports = append(reports, report)
			continue
		}
		if res.CompileErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.name(), res.CompileErr))
			continue
		}
		if format == "short" {
			if short := diag.FormatShortDiagnostics(res.Diagnostics, p.snapshot, withNotes); short != "" {
				fmt.Fprintln(out, short)
			}
			continue
		}
		if multiple && !quiet {
			fmt.Fprintf(out, "== %s (%s)\n", p.name(), pluralize(len(res.Diagnostics), "diagnostic"))
		}
		err = diagfmt.Pretty(out, res.Diagnostics, p.snapshot, diagfmt.PrettyOpts{
			Color:     color,
			PathMode:  pathMode,
			ShowNotes: withNotes,
			Snippet:   !noSnippet,
		})
		if err != nil {
			return err
		}
		if res.Truncated > 0 && !quiet {
			fmt.Fprintf(out, "... %d more not shown (--max-diagnostics)\n", res.Truncated)
		}
	}

	if !quiet {
		warns.flush(cmd.ErrOrStderr())
	}
	if format == "json" {
		if reports == nil {
			reports = []projectDiagnostics{}
		}
		encErr := diagfmt.Encode(out, map[string]any{"projects": reports})
		errs = append(errs, encErr)
	}
	return errors.Join(errs...)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
