package ui

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"bulkfix/internal/fix"
	"bulkfix/internal/runner"
)

func send(m *model, ev runner.Event) {
	m.Update(eventMsg(ev))
}

func TestProgressModelTracksProjects(t *testing.T) {
	events := make(chan runner.Event)
	m := NewProgressModel("bulkfix", []string{"docs", "site"}, events).(*model)

	send(m, runner.Event{Project: "docs", Job: 0, Kind: runner.EventPhase, Phase: "apply"})
	cr := fix.CategoryResult{Code: "WS001", Kind: fix.KindBulkApplied}
	send(m, runner.Event{Project: "docs", Job: 0, Kind: runner.EventCategory, Category: &cr, Total: 2})
	send(m, runner.Event{Project: "unknown", Job: 7, Kind: runner.EventPhase, Phase: "collect"})

	view := m.View()
	for _, want := range []string{"applying docs 1/2", "queued site", "0/2 projects finished"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	// docs: 0.3+0.6*1/2, site: 0
	if got := m.percent(); got != 0.3 {
		t.Fatalf("percent = %v, want 0.3", got)
	}

	send(m, runner.Event{Project: "docs", Job: 0, Kind: runner.EventDone, Outcome: &runner.Outcome{Mode: runner.ModeVerify, Modified: []string{"a.md"}}})
	send(m, runner.Event{Project: "site", Job: 1, Kind: runner.EventDone, Err: errors.New("boom")})
	if m.rows[0].status != statusPending || m.rows[1].status != statusFailed {
		t.Fatalf("statuses = %v, %v", m.rows[0].status, m.rows[1].status)
	}
	if got := m.percent(); got != 1 {
		t.Fatalf("percent = %v, want 1", got)
	}

	m.Update(closedMsg{})
	view = m.View()
	if !strings.Contains(view, "done: bulkfix") || !strings.Contains(view, "2/2 projects finished") {
		t.Fatalf("final view:\n%s", view)
	}
}

func TestProgressModelSameNameProjects(t *testing.T) {
	m := NewProgressModel("bulkfix", []string{"docs", "docs"}, nil).(*model)

	send(m, runner.Event{Project: "docs", Job: 1, Kind: runner.EventPhase, Phase: "collect"})
	if m.rows[0].status != statusQueued || m.rows[1].status != statusCollecting {
		t.Fatalf("statuses = %v, %v", m.rows[0].status, m.rows[1].status)
	}
}

func TestProgressModelCtrlC(t *testing.T) {
	m := NewProgressModel("bulkfix", []string{"docs"}, nil)
	if Interrupted(m) {
		t.Fatal("fresh model must not be interrupted")
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c must quit")
	}
	if !Interrupted(next) {
		t.Fatal("ctrl+c must mark the model interrupted")
	}

	done := NewProgressModel("bulkfix", []string{"docs"}, nil)
	done.Update(closedMsg{})
	done.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if Interrupted(done) {
		t.Fatal("ctrl+c after every run finished is not an interruption")
	}
}

func TestRowProgress(t *testing.T) {
	tests := []struct {
		name string
		row  row
		want float64
	}{
		{"queued", row{}, 0},
		{"collecting", row{status: statusCollecting}, 0.1},
		{"applying without categories", row{status: statusApplying}, 0.3},
		{"applying half handled", row{status: statusApplying, handled: 2, total: 4}, 0.6},
		{"applying all handled", row{status: statusApplying, handled: 4, total: 4}, 0.9},
		{"writing", row{status: statusWriting}, 0.95},
		{"cancelled", row{status: statusCancelled}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.progress(); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("progress = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFinalStatus(t *testing.T) {
	tests := []struct {
		name string
		ev   runner.Event
		want status
	}{
		{"error", runner.Event{Err: errors.New("x")}, statusFailed},
		{"cancelled", runner.Event{Outcome: &runner.Outcome{Cancelled: true}}, statusCancelled},
		{"committed", runner.Event{Outcome: &runner.Outcome{Mode: runner.ModeCommit, Modified: []string{"a"}}}, statusDone},
		{"no outcome", runner.Event{}, statusDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := finalStatus(tt.ev); got != tt.want {
				t.Fatalf("finalStatus = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("日本語", 4); runewidth.StringWidth(got) > 4 {
		t.Fatalf("truncate wide = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
}
