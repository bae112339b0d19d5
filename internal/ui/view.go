package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const statusWidth = 12

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	footerStyle = lipgloss.NewStyle().Faint(true)

	statusColor = map[status]lipgloss.Color{
		statusDone:      "2",
		statusFailed:    "1",
		statusPending:   "3",
		statusCancelled: "3",
	}
)

func statusStyle(s status) lipgloss.Style {
	c, ok := statusColor[s]
	switch {
	case ok:
	case s == statusQueued:
		c = "7"
	default:
		c = "6" // в работе
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (m *model) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder

	header := m.spinner.View() + " " + m.title
	if m.finished {
		header = "done: " + m.title
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-16, 20)
	finished := 0
	for _, r := range m.rows {
		if r.status.final() {
			finished++
		}
		label := fmt.Sprintf("%*s", statusWidth, r.status)
		fmt.Fprintf(&b, "  %s %s", statusStyle(r.status).Render(label), truncate(r.name, nameWidth))
		if r.total > 0 {
			fmt.Fprintf(&b, " %d/%d", r.handled, r.total)
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.finished {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	b.WriteString(footerStyle.Render(fmt.Sprintf("%d/%d projects finished", finished, len(m.rows))))
	b.WriteByte('\n')
	return b.String()
}

// truncate cuts value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
