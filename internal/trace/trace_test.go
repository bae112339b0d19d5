package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	ctx := WithProject(WithTracer(context.Background(), tr), "docs")

	span, pctx := Start(ctx, ScopePhase, "collect")
	cat, _ := Start(pctx, ScopeCategory, "WS001")
	cat.End("")
	span.End("2 diagnostics")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected begin+end of the phase only, got:\n%s", buf.String())
	}
	var end struct {
		Kind    string `json:"kind"`
		Project string `json:"project"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatal(err)
	}
	if end.Kind != "end" || end.Project != "docs" || end.Detail != "2 diagnostics" {
		t.Fatalf("unexpected end event: %+v", end)
	}
}

func TestStartNestsSpans(t *testing.T) {
	tr := NewRingTracer(16, LevelDebug)
	ctx := WithProject(WithTracer(context.Background(), tr), "api")

	run, rctx := Start(ctx, ScopeRun, "run")
	phase, pctx := Start(rctx, ScopePhase, "apply")
	Mark(pctx, ScopeProvider, "warning", "boom")
	phase.End("")
	run.End("")

	events := tr.Snapshot()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[1].ParentID != run.ID() {
		t.Fatalf("phase parent = %d, want %d", events[1].ParentID, run.ID())
	}
	if events[2].Kind != KindPoint || events[2].ParentID != phase.ID() {
		t.Fatalf("mark not attached to phase: %+v", events[2])
	}
	for _, ev := range events {
		if ev.Project != "api" {
			t.Fatalf("event without project: %+v", ev)
		}
	}
}

func TestFilteredSpanIsInert(t *testing.T) {
	tr := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), tr)
	span, cctx := Start(ctx, ScopeProvider, "analyze whitespace")
	if span.ID() != 0 || cctx != ctx {
		t.Fatal("filtered span must not replace the context span")
	}
	if d := span.WithExtra("k", "v").End("x"); d != 0 {
		t.Fatalf("inert span reported duration %v", d)
	}
	if len(tr.Snapshot()) != 0 {
		t.Fatal("filtered span emitted events")
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	tr := NewRingTracer(2, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	for _, name := range []string{"a", "b", "c"} {
		Mark(ctx, ScopeProvider, name, "")
	}
	events := tr.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected ring contents: %+v", events)
	}
	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("dump: %q", buf.String())
	}
}

func TestFormatText(t *testing.T) {
	ev := &Event{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		Kind:    KindSpanEnd,
		Scope:   ScopeCategory,
		Project: "docs",
		Name:    "WS001",
		Detail:  "3/3 applied",
		Elapsed: 1500 * time.Microsecond,
		Extra:   map[string]string{"kind": "bulk", "by": "ws"},
	}
	got := string(FormatEvent(ev, FormatText))
	want := "03:04:05.006 [docs]     ← WS001 (3/3 applied) 1.5ms {by=ws, kind=bulk}\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("expected Nop tracer by default")
	}
	tr := NewRingTracer(4, LevelDetail)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("expected tracer from context")
	}
	if WithTracer(context.Background(), nil) == nil || FromContext(WithTracer(context.Background(), nil)) != Nop {
		t.Fatal("nil tracer must become Nop")
	}
}

func TestNewPicksSinks(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok || len(multi.Tracers()) != 2 {
		t.Fatalf("expected stream+ring, got %T", tr)
	}
	if off, _ := New(Config{Level: LevelOff, Mode: ModeStream}); off != Nop {
		t.Fatal("LevelOff must yield Nop")
	}
	if formatFor(Config{OutputPath: "run.ndjson"}) != FormatNDJSON {
		t.Fatal("expected NDJSON for .ndjson output")
	}
}

func TestHeartbeatStops(t *testing.T) {
	tr := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(tr, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	h.Stop()
	h.Stop()
	n := len(tr.Snapshot())
	if n == 0 {
		t.Fatal("expected heartbeats")
	}
	time.Sleep(5 * time.Millisecond)
	if len(tr.Snapshot()) != n {
		t.Fatal("heartbeat kept running after Stop")
	}
	var nilBeat *Heartbeat
	nilBeat.Stop()
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if ModeRing.String() != "ring" || LevelDebug.String() != "debug" {
		t.Fatal("unexpected names")
	}
}
