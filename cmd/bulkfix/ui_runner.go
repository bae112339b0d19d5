package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bulkfix/internal/runner"
	"bulkfix/internal/ui"
)

// runWithUI runs jobs while a Bubble Tea program renders their progress.
// The UI quits once every job has reported and the event channel closes.
// Ctrl+C inside the UI cancels the runs and yields errCancelled.
func runWithUI(parent context.Context, title string, jobs []runner.Job, limit int) ([]runner.Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	events := make(chan runner.Event, 256)
	resultCh := make(chan []runner.Result, 1)

	names := make([]string, len(jobs))
	for i := range jobs {
		names[i] = jobs[i].Name
		jobs[i].Options.Progress = runner.ChannelSink(events)
	}

	go func() {
		results := runner.RunAll(ctx, jobs, limit)
		close(events)
		resultCh <- results
	}()

	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	final, uiErr := program.Run()
	interrupted := ui.Interrupted(final)
	if interrupted {
		cancel()
	}
	// UI мог выйти раньше (ctrl+c): дочитываем события, чтобы раннеры не блокировались
	go func() {
		for range events {
		}
	}()
	results := <-resultCh
	switch {
	case interrupted:
		return results, errCancelled
	case uiErr != nil && parent.Err() == nil:
		return results, uiErr
	}
	return results, nil
}
