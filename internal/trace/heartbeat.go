package trace

import (
	"context"
	"fmt"
	"time"
)

// Heartbeat emits a liveness event every interval. Heartbeats that keep
// arriving without span ends point at a stuck provider call.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat returns nil when tracer is disabled or interval is not
// positive; Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.loop(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) loop(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	started := now()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case at := <-ticker.C:
			elapsed := at.Sub(started).Round(time.Millisecond)
			tracer.Emit(&Event{
				Time:    at,
				Kind:    KindHeartbeat,
				Scope:   ScopeRun,
				Name:    "heartbeat",
				Detail:  fmt.Sprintf("#%d +%s", n, elapsed),
				Elapsed: elapsed,
			})
		}
	}
}

// Stop halts the heartbeat and waits for its goroutine. Safe to call more
// than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
