package provider

import (
	"errors"
	"fmt"

	"bulkfix/internal/diag"
)

// ErrPanic is wrapped by InvocationError when a provider call panicked.
var ErrPanic = errors.New("provider panicked")

// InvocationError records a failed provider call. The pipeline treats it as
// "this call produced nothing" and keeps going.
type InvocationError struct {
	Provider string
	Op       string // declare, analyze, actions, bulk, apply
	Code     diag.Code
	Err      error
}

func (e *InvocationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s [%s]: %v", e.Provider, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// WarnFunc receives recoverable provider failures.
type WarnFunc func(err error)

// Warn calls w when it is set.
func (w WarnFunc) Warn(err error) {
	if w != nil && err != nil {
		w(err)
	}
}

// Invoke runs fn, converting a returned error or a panic into an
// *InvocationError.
func Invoke(name, op string, code diag.Code, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InvocationError{Provider: name, Op: op, Code: code, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()
	if callErr := fn(); callErr != nil {
		return &InvocationError{Provider: name, Op: op, Code: code, Err: callErr}
	}
	return nil
}
