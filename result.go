package bootseq

import (
	"fmt"
	"strings"
)

// Phase identifies one of the two halves of a boot sequence; PhaseUp for startup and PhaseDown for
// shutdown.
type Phase uint8

const (
	PhaseUp Phase = iota
	PhaseDown
)

// String returns "up" or "down".
func (p Phase) String() string {
	switch p {
	case PhaseUp:
		return "up"
	case PhaseDown:
		return "down"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// StartupKind tells the outcome of a component's startup.
type StartupKind uint8

const (
	// StartupOkay means the start action ran and returned nil.
	StartupOkay StartupKind = iota
	// StartupFailed means the start action returned an error or panicked.
	StartupFailed
	// StartupDependencyError means the start action was never invoked because at least one
	// dependency did not start successfully.
	StartupDependencyError
	// StartupBug means the component's start future broke; see CoordinationError.
	StartupBug
)

var startupKindNames = [...]string{"okay", "failed", "dependency-error", "bug"}

// String returns a short lower-case name for the kind.
func (k StartupKind) String() string {
	if int(k) < len(startupKindNames) {
		return startupKindNames[k]
	}
	return fmt.Sprintf("startup-kind(%d)", uint8(k))
}

// StopKind tells the outcome of a component's shutdown.
type StopKind uint8

const (
	// StopOkay means the stop action ran and returned nil.
	StopOkay StopKind = iota
	// StopFailure means the stop action returned an error or panicked.
	StopFailure
	// StopBug means the component's stop slot was broken by a coordination failure. It only appears
	// in the aggregate returned by Manager.Stop.
	StopBug
)

// String returns a short lower-case name for the kind.
func (k StopKind) String() string {
	switch k {
	case StopOkay:
		return "okay"
	case StopFailure:
		return "failure"
	case StopBug:
		return "bug"
	default:
		return fmt.Sprintf("stop-kind(%d)", uint8(k))
	}
}

// StartupResult is the outcome of a single component's startup. Missing is only set for
// StartupDependencyError and lists the dependencies that did not start, in declaration order.
type StartupResult struct {
	Component string
	Kind      StartupKind
	Err       error
	Missing   []string
}

func startupOkay(name string) StartupResult {
	return StartupResult{Component: name, Kind: StartupOkay}
}

func startupFailed(name string, err error) StartupResult {
	return StartupResult{Component: name, Kind: StartupFailed, Err: err}
}

func startupDependencyError(name string, missing []string) StartupResult {
	return StartupResult{
		Component: name,
		Kind:      StartupDependencyError,
		Err:       &DependencyError{Component: name, Missing: missing},
		Missing:   missing,
	}
}

func startupBug(name string, err error) StartupResult {
	return StartupResult{Component: name, Kind: StartupBug, Err: err}
}

// IsFailure reports whether the component did not start successfully.
func (r StartupResult) IsFailure() bool {
	return r.Kind != StartupOkay
}

// String renders the result as "name: kind" with the cause appended for failures.
func (r StartupResult) String() string {
	switch r.Kind {
	case StartupOkay:
		return r.Component + ": " + r.Kind.String()
	case StartupDependencyError:
		return fmt.Sprintf("%s: %s [%s]", r.Component, r.Kind, strings.Join(r.Missing, ", "))
	default:
		return fmt.Sprintf("%s: %s (%v)", r.Component, r.Kind, r.Err)
	}
}

// StopResult is the outcome of a single component's shutdown.
type StopResult struct {
	Component string
	Kind      StopKind
	Err       error
}

func stopOkay(name string) StopResult {
	return StopResult{Component: name, Kind: StopOkay}
}

func stopFailure(name string, err error) StopResult {
	return StopResult{Component: name, Kind: StopFailure, Err: err}
}

func stopBug(name string, err error) StopResult {
	return StopResult{Component: name, Kind: StopBug, Err: err}
}

// IsFailure reports whether the stop action failed.
func (r StopResult) IsFailure() bool {
	return r.Kind != StopOkay
}

// String renders the result as "name: kind" with the cause appended for failures.
func (r StopResult) String() string {
	if r.Kind == StopOkay {
		return r.Component + ": " + r.Kind.String()
	}
	return fmt.Sprintf("%s: %s (%v)", r.Component, r.Kind, r.Err)
}
