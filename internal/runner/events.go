package runner

import "bulkfix/internal/fix"

// EventKind classifies progress events.
type EventKind uint8

const (
	EventPhase EventKind = iota
	EventCategory
	EventDone
)

// Event reports run progress to an observer, e.g. the terminal UI.
type Event struct {
	Project  string
	Job      int // индекс задачи в RunAll, 0 для одиночного Run
	Kind     EventKind
	Phase    string              // EventPhase
	Category *fix.CategoryResult // EventCategory
	Total    int                 // число категорий, известно после select
	Outcome  *Outcome            // EventDone
	Err      error               // EventDone
}

// ProgressFunc receives progress events. It is called from the goroutine
// running the project and must not block for long.
type ProgressFunc func(Event)

func (p ProgressFunc) emit(ev Event) {
	if p != nil {
		p(ev)
	}
}

// ChannelSink forwards events into ch. The caller owns ch and closes it
// once every run feeding it has returned.
func ChannelSink(ch chan<- Event) ProgressFunc {
	return func(ev Event) { ch <- ev }
}
