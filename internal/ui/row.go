package ui

import "bulkfix/internal/runner"

type status uint8

const (
	statusQueued status = iota
	statusCollecting
	statusSelecting
	statusApplying
	statusWriting
	statusDone // все что дальше - финальные состояния
	statusPending
	statusCancelled
	statusFailed
)

var statusText = [...]string{
	statusQueued:     "queued",
	statusCollecting: "collecting",
	statusSelecting:  "selecting",
	statusApplying:   "applying",
	statusWriting:    "writing",
	statusDone:       "done",
	statusPending:    "pending",
	statusCancelled:  "cancelled",
	statusFailed:     "error",
}

func (s status) String() string { return statusText[s] }

func (s status) final() bool { return s >= statusDone }

var phaseStatus = map[string]status{
	"collect": statusCollecting,
	"select":  statusSelecting,
	"apply":   statusApplying,
	"commit":  statusWriting,
}

// row is one project on screen.
type row struct {
	name   string
	status status
	// categories handled during apply, out of total
	handled, total int
}

func (r *row) apply(ev runner.Event) {
	switch ev.Kind {
	case runner.EventPhase:
		if s, ok := phaseStatus[ev.Phase]; ok {
			r.status = s
		}
	case runner.EventCategory:
		r.total = ev.Total
		r.handled++
	case runner.EventDone:
		r.status = finalStatus(ev)
	}
}

func finalStatus(ev runner.Event) status {
	switch {
	case ev.Err != nil:
		return statusFailed
	case ev.Outcome != nil && ev.Outcome.Cancelled:
		return statusCancelled
	case ev.Outcome.ChangesPending():
		return statusPending
	}
	return statusDone
}

// progress estimates how far the row is, from 0 to 1. Apply dominates
// because providers run there.
func (r row) progress() float64 {
	switch {
	case r.status.final():
		return 1
	case r.status == statusApplying && r.total > 0:
		return 0.3 + 0.6*float64(r.handled)/float64(r.total)
	}
	switch r.status {
	case statusCollecting:
		return 0.1
	case statusSelecting, statusApplying:
		return 0.3
	case statusWriting:
		return 0.95
	}
	return 0
}
