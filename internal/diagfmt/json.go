package diagfmt

import (
	"encoding/json"
	"io"

	"bulkfix/internal/diag"
	"bulkfix/internal/observ"
	"bulkfix/internal/runner"
	"bulkfix/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// CategoryJSON is one category result.
type CategoryJSON struct {
	Code      string   `json:"code"`
	Result    string   `json:"result"`
	Provider  string   `json:"provider,omitempty"`
	Key       string   `json:"key,omitempty"`
	Title     string   `json:"title,omitempty"`
	Found     int      `json:"found"`
	Applied   int      `json:"applied"`
	Missed    int      `json:"missed,omitempty"`
	Paths     []string `json:"paths,omitempty"`
	Unfixable string   `json:"unfixable,omitempty"`
}

// OutcomeJSON is the serialized form of a runner.Outcome.
type OutcomeJSON struct {
	Project          string         `json:"project,omitempty"`
	Mode             runner.Mode    `json:"mode"`
	DiagnosticsFound int            `json:"diagnostics_found"`
	FixesApplied     int            `json:"fixes_applied"`
	Modified         []string       `json:"modified"`
	Written          []string       `json:"written,omitempty"`
	Unfixable        []string       `json:"unfixable"`
	Categories       []CategoryJSON `json:"categories"`
	CompileError     string         `json:"compile_error,omitempty"`
	Cancelled        bool           `json:"cancelled,omitempty"`
	Error            string         `json:"error,omitempty"`
	Timing           *observ.Report `json:"timing,omitempty"`
}

// RunJSON is the root of `bulkfix fix --format json`.
type RunJSON struct {
	Projects []OutcomeJSON `json:"projects"`
	Pending  bool          `json:"changes_pending"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, snap *source.Snapshot, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	if snap == nil {
		return loc
	}
	f, ok := snap.Get(span.File)
	if !ok {
		return loc
	}
	loc.File = pathMode.display(f, snap)

	// Добавляем позиции строк/колонок если требуется
	if includePositions {
		if startPos, endPos, ok := snap.Resolve(span); ok {
			loc.StartLine = startPos.Line
			loc.StartCol = startPos.Col
			loc.EndLine = endPos.Line
			loc.EndCol = endPos.Col
		}
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, snap *source.Snapshot, opts JSONOpts) DiagnosticsOutput {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, n)}
	for i := range n {
		d := &diags[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
			Location: makeLocation(d.Primary, snap, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, snap, opts.PathMode, opts.IncludePositions),
				}
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// BuildOutcome converts an outcome (or a failed project) into its JSON shape.
func BuildOutcome(project string, o *runner.Outcome, runErr error, timings bool) OutcomeJSON {
	out := OutcomeJSON{Project: project, Modified: []string{}, Unfixable: []string{}, Categories: []CategoryJSON{}}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	if o == nil {
		return out
	}
	if o.Project != "" {
		out.Project = o.Project
	}
	out.Mode = o.Mode
	out.DiagnosticsFound = o.DiagnosticsFound
	out.FixesApplied = o.FixesApplied
	out.Modified = append(out.Modified, o.Modified...)
	out.Written = o.Written
	out.Unfixable = append(out.Unfixable, o.Unfixable...)
	out.Cancelled = o.Cancelled
	if o.CompileErr != nil {
		out.CompileError = o.CompileErr.Error()
	}
	if timings {
		report := o.Timing
		out.Timing = &report
	}
	for _, c := range o.Categories {
		cj := CategoryJSON{
			Code:     string(c.Code),
			Result:   c.Kind.String(),
			Provider: c.Provider,
			Key:      c.Key,
			Title:    c.Title,
			Found:    c.Found,
			Applied:  c.Applied,
			Missed:   c.Missed,
			Paths:    c.Paths,
		}
		if c.Unfixable != nil {
			cj.Unfixable = c.Unfixable.Message
		}
		out.Categories = append(out.Categories, cj)
	}
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, diags []diag.Diagnostic, snap *source.Snapshot, opts JSONOpts) error {
	return Encode(w, BuildDiagnosticsOutput(diags, snap, opts))
}

// Run writes a RunJSON document.
func Run(w io.Writer, run RunJSON) error {
	if run.Projects == nil {
		run.Projects = []OutcomeJSON{}
	}
	return Encode(w, run)
}

// Encode writes v as indented JSON.
func Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
