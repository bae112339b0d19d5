package provider

import (
	"fmt"
	"sync"

	"bulkfix/internal/diag"
)

// Registry holds analyzers and fixers in registration order. The order is
// significant: the first fixer declaring a category wins.
type Registry struct {
	mu        sync.RWMutex
	analyzers []Analyzer
	fixers    []Fixer
	names     map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// RegisterAnalyzer appends an analyzer.
func (r *Registry) RegisterAnalyzer(a Analyzer) error {
	if a == nil {
		return fmt.Errorf("analyzer cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.claim("analyzer", NameOf(a)); err != nil {
		return err
	}
	r.analyzers = append(r.analyzers, a)
	return nil
}

// RegisterFixer appends a fixer.
func (r *Registry) RegisterFixer(f Fixer) error {
	if f == nil {
		return fmt.Errorf("fixer cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.claim("fixer", NameOf(f)); err != nil {
		return err
	}
	r.fixers = append(r.fixers, f)
	return nil
}

func (r *Registry) claim(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	key := kind + "/" + name
	if _, dup := r.names[key]; dup {
		return fmt.Errorf("%s %q already registered", kind, name)
	}
	r.names[key] = struct{}{}
	return nil
}

// Analyzers returns the analyzers in registration order.
func (r *Registry) Analyzers() []Analyzer {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Analyzer(nil), r.analyzers...)
}

// Fixers returns the fixers in registration order.
func (r *Registry) Fixers() []Fixer {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Fixer(nil), r.fixers...)
}

// Filter returns a registry narrowed to providers that declare at least one
// code in set. An empty set returns a copy of r. Analyzers that declare no
// codes are kept, since the collected diagnostics are filtered anyway. A
// provider whose declaration fails is dropped and reported to warn.
func (r *Registry) Filter(set diag.CodeSet, warn WarnFunc) *Registry {
	out := NewRegistry()
	for _, a := range r.Analyzers() {
		codes, err := CodesOf(a)
		if err != nil {
			warn.Warn(err)
			continue
		}
		if len(codes) == 0 || set.Intersects(codes) {
			out.analyzers = append(out.analyzers, a)
		}
	}
	for _, f := range r.Fixers() {
		codes, err := FixableCodesOf(f)
		if err != nil {
			warn.Warn(err)
			continue
		}
		if set.Intersects(codes) {
			out.fixers = append(out.fixers, f)
		}
	}
	return out
}
