package bootseq

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// startedErrorMessage triggers when a component is registered after Manager.Start or Manager.Stop.
	startedErrorMessage = "sequence is already running"

	// missingUpMessage and missingDownMessage trigger when a Declaration lacks one of its actions.
	missingUpMessage   = "missing start action"
	missingDownMessage = "missing stop action"
)

var (
	// ErrTimeout is returned by the blocking wrappers when the aggregate result did not resolve in time.
	// In-flight actions are not aborted.
	ErrTimeout = errors.New("timed out waiting for sequence")
)

// EmptySequenceError indicates an empty boot sequence.
type EmptySequenceError string

// Error returns the error message for a EmptySequenceError.
func (e EmptySequenceError) Error() string {
	return fmt.Sprintf("empty boot sequence: %q", string(e))
}

// InvalidStateError indicates that the Manager cannot accept the requested operation in its current state.
type InvalidStateError string

// Error returns the error message for a InvalidStateError.
func (i InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", string(i))
}

// NilFuncError indicates that a Declaration is missing its start or stop action.
type NilFuncError string

// Error returns the error message for a NilFuncError.
func (n NilFuncError) Error() string {
	return fmt.Sprintf("nil Func provided: %s", string(n))
}

// ForeignDependencyError indicates a dependency that is not registered with the Manager the
// component is being registered with.
type ForeignDependencyError struct {
	Component  string
	Dependency string
}

// Error returns the error message for a ForeignDependencyError.
func (f *ForeignDependencyError) Error() string {
	return fmt.Sprintf("component %q depends on %q which belongs to another sequence", f.Component, f.Dependency)
}

// DependencyError is the error carried by a StartupResult whose start action was skipped because one
// or more dependencies did not start successfully.
type DependencyError struct {
	Component string
	Missing   []string
}

// Error returns the error message for a DependencyError.
func (d *DependencyError) Error() string {
	return fmt.Sprintf("component %q skipped, dependencies not started: %s", d.Component, strings.Join(d.Missing, ", "))
}

// PanicError wraps a value recovered from a panicking start or stop action.
type PanicError struct {
	Value interface{}
}

// Error returns the error message for a PanicError.
func (p *PanicError) Error() string {
	return fmt.Sprintf("action panicked: %v", p.Value)
}

// CoordinationError marks a failure inside the waiting machinery rather than in a user action. A
// component future failed with a CoordinationError is broken; it never carries a normal result.
type CoordinationError struct {
	Component string
	Phase     Phase
	Err       error
}

// Error returns the error message for a CoordinationError.
func (c *CoordinationError) Error() string {
	return fmt.Sprintf("coordination failure in %s phase of %q: %v", c.Phase, c.Component, c.Err)
}

// Unwrap returns the underlying cause.
func (c *CoordinationError) Unwrap() error {
	return c.Err
}

// Check that errors satisfy the error interface.
var _ error = EmptySequenceError("")
var _ error = InvalidStateError("")
var _ error = NilFuncError("")
var _ error = &ForeignDependencyError{}
var _ error = &DependencyError{}
var _ error = &PanicError{}
var _ error = &CoordinationError{}
