package diagfmt

import (
	"io"

	"bulkfix/internal/fix"
	"bulkfix/internal/observ"
	"bulkfix/internal/runner"
)

// Outcome prints a run summary:
//
//	fixed: <path>            (commit mode)
//	would fix: <path>        (verify mode)
//	<CODE> <kind> <applied>/<found> [<provider>: <title>]
//	found N, fixed M, unfixable K
func Outcome(w io.Writer, o *runner.Outcome, opts PrettyOpts) error {
	if o == nil {
		return nil
	}
	p := &printer{w: w}
	pal := newPalette(opts.Color)

	if o.Project != "" {
		p.printf("%s %s\n", pal.code.Sprint(o.Project), pal.dim.Sprintf("(%s)", o.Mode))
	}
	if o.CompileErr != nil {
		p.printf("%s %v\n", pal.err.Sprint("compile error:"), o.CompileErr)
	}
	verb := pal.ok.Sprint("fixed:")
	if o.Mode == runner.ModeVerify {
		verb = pal.pending.Sprint("would fix:")
	}
	for _, path := range o.Modified {
		p.printf("%s %s\n", verb, pal.path.Sprint(path))
	}
	for i := range o.Categories {
		printCategory(p, pal, &o.Categories[i])
	}
	if o.Cancelled {
		p.printf("%s\n", pal.warn.Sprint("cancelled: nothing was written"))
	}
	p.printf("found %d, fixed %d, unfixable %d\n", o.DiagnosticsFound, o.FixesApplied, o.Unfixed())
	if opts.Timings {
		printTimings(p, pal, o.Timing)
	}
	return p.err
}

func printCategory(p *printer, pal palette, c *fix.CategoryResult) {
	switch c.Kind {
	case fix.KindUnfixable:
		msg := "no fix available"
		if c.Unfixable != nil {
			msg = c.Unfixable.Message
		}
		p.printf("  %s %s\n", pal.err.Sprint(string(c.Code)), pal.dim.Sprint(msg))
	case fix.KindSkipped:
		p.printf("  %s %s 0/%d [%s: %s]\n", pal.warn.Sprint(string(c.Code)), c.Kind, c.Found, c.Provider, c.Title)
	default:
		p.printf("  %s %s %d/%d [%s: %s]\n", pal.code.Sprint(string(c.Code)), c.Kind, c.Applied, c.Found, c.Provider, c.Title)
	}
}

func printTimings(p *printer, pal palette, r observ.Report) {
	for _, phase := range r.Phases {
		line := pal.dim.Sprintf("%s %.1f ms", phase.Name, phase.DurationMS)
		if phase.Note != "" {
			line += pal.dim.Sprintf(" (%s)", phase.Note)
		}
		p.printf("%s\n", line)
	}
	if slow, ok := r.Slowest(); ok && len(r.Phases) > 1 {
		p.printf("%s\n", pal.dim.Sprintf("total %.1f ms, slowest %s", r.TotalMS, slow.Name))
	} else if ok {
		p.printf("%s\n", pal.dim.Sprintf("total %.1f ms", r.TotalMS))
	}
}
