// Package ui renders live progress of bulk runs in the terminal.
package ui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bulkfix/internal/runner"
)

type model struct {
	title    string
	events   <-chan runner.Event
	spinner  spinner.Model
	bar      progress.Model
	rows     []row
	width    int
	finished bool
	// ctrl+c в raw-режиме приходит клавишей, а не сигналом
	interrupted bool
}

type eventMsg runner.Event

// closedMsg means the event channel was closed: every run has finished.
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model with one row per project,
// fed by events until the channel is closed. Rows follow the job order of
// runner.RunAll; events are matched to rows by Event.Job.
func NewProgressModel(title string, projects []string, events <-chan runner.Event) tea.Model {
	m := &model{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("6")))),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]row, len(projects)),
		width:   80,
	}
	for i, name := range projects {
		m.rows[i] = row{name: name}
	}
	return m
}

// Interrupted reports whether the user quit a progress model with Ctrl+C
// before every run finished.
func Interrupted(m tea.Model) bool {
	pm, ok := m.(*model)
	return ok && pm.interrupted && !pm.finished
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next)
}

// next blocks on the event channel.
func (m *model) next() tea.Msg {
	ev, ok := <-m.events
	if !ok {
		return closedMsg{}
	}
	return eventMsg(ev)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if i := msg.Job; i >= 0 && i < len(m.rows) {
			m.rows[i].apply(runner.Event(msg))
			return m, tea.Batch(m.bar.SetPercent(m.percent()), m.next)
		}
		return m, m.next
	case closedMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.interrupted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.finished {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// percent is the mean progress over all rows.
func (m *model) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range m.rows {
		sum += r.progress()
	}
	return sum / float64(len(m.rows))
}
