package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing is emitted; the ring is dumped on panic
	LevelPhase        // runs and phases
	LevelDetail       // plus categories
	LevelDebug        // plus provider calls
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// threshold is the finest scope emitted at l.
func (l Level) threshold() Scope {
	switch l {
	case LevelPhase:
		return ScopePhase
	case LevelDetail:
		return ScopeCategory
	case LevelDebug:
		return ScopeProvider
	}
	return 0
}

// ShouldEmit reports whether events of scope pass level l.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope != 0 && scope <= l.threshold()
}
