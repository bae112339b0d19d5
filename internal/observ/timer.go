// Package observ measures how long each phase of a run takes.
package observ

import "time"

// Timer records sequential phases of one run. It is not safe for
// concurrent use; every run owns its timer.
type Timer struct {
	clock  func() time.Time
	phases []span
}

type span struct {
	name       string
	start, end time.Time
	note       string
}

func NewTimer() *Timer { return &Timer{clock: time.Now} }

// Begin opens a phase and returns the handle End expects.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, span{name: name, start: t.clock()})
	return len(t.phases) - 1
}

// End closes phase idx. Unknown handles and phases already closed are
// ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || !t.phases[idx].end.IsZero() {
		return
	}
	t.phases[idx].end = t.clock()
	t.phases[idx].note = note
}

// PhaseReport is one phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is what a run exposes about its timing. TotalMS is wall time from
// the first phase start to the last phase end.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the closed phases; open ones are left out.
func (t *Timer) Report() Report {
	var r Report
	var first, last time.Time
	for _, p := range t.phases {
		if p.end.IsZero() {
			continue
		}
		if first.IsZero() || p.start.Before(first) {
			first = p.start
		}
		if p.end.After(last) {
			last = p.end
		}
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.end.Sub(p.start)), Note: p.note})
	}
	if len(r.Phases) > 0 {
		r.TotalMS = millis(last.Sub(first))
	}
	return r
}

// Slowest returns the longest phase; ok is false for an empty report.
func (r Report) Slowest() (PhaseReport, bool) {
	if len(r.Phases) == 0 {
		return PhaseReport{}, false
	}
	best := r.Phases[0]
	for _, p := range r.Phases[1:] {
		if p.DurationMS > best.DurationMS {
			best = p
		}
	}
	return best, true
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
