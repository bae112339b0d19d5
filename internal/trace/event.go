package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // instant event, e.g. a provider warning
	KindHeartbeat // periodic liveness signal
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Smaller values are coarser.
type Scope uint8

const (
	ScopeRun      Scope = iota + 1 // один проект целиком
	ScopePhase                     // collect, select, apply, commit
	ScopeCategory                  // одна категория диагностик
	ScopeProvider                  // один вызов анализатора или фиксера
)

var scopeNames = [...]string{
	ScopeRun:      "run",
	ScopePhase:    "phase",
	ScopeCategory: "category",
	ScopeProvider: "provider",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// depth is the nesting used by the text format.
func (s Scope) depth() int {
	if s == 0 {
		return 0
	}
	return int(s) - 1
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the sink, monotonic per process
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	// Project names the run the event belongs to; concurrent runs share
	// one tracer.
	Project string
	Name    string // "collect", "WS001", "analyze whitespace", ...
	Detail  string
	// Elapsed is set on KindSpanEnd and heartbeats.
	Elapsed time.Duration
	Extra   map[string]string
}
