// Package sim builds boot sequences of simulated components from a sequence file. Simulated actions
// sleep for a configured duration and may fail, which makes it possible to watch the ordering of a
// sequence without running real services.
package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mkock/bootseq/v3"
	"github.com/mkock/bootseq/v3/internal/config"
)

// ErrSimulatedFailure is returned by actions configured to fail.
var ErrSimulatedFailure = errors.New("simulated failure")

// Event marks the beginning or end of a simulated action.
type Event struct {
	Component string
	Phase     bootseq.Phase
	Begin     bool
	At        time.Duration // Since the log was created.
}

func (e Event) String() string {
	edge := "end"
	if e.Begin {
		edge = "begin"
	}
	return fmt.Sprintf("%s-%s-%s", e.Component, e.Phase, edge)
}

// EventLog records events of simulated actions in the order they happened.
type EventLog struct {
	mu     sync.Mutex
	origin time.Time
	events []Event
}

func newEventLog() *EventLog {
	return &EventLog{origin: time.Now()}
}

func (l *EventLog) add(name string, ph bootseq.Phase, begin bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, Event{Component: name, Phase: ph, Begin: begin, At: time.Since(l.origin)})
}

// Events returns a copy of the recorded events.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

// Simulation is a boot sequence of simulated components.
type Simulation struct {
	cfg     *config.File
	manager *bootseq.Manager
	log     *EventLog
}

// Build registers a simulated component for every entry of cfg, in dependency order, applying both
// the explicit depends_on entries and the edges of the sequence formula.
func Build(cfg *config.File, opts ...bootseq.Option) (*Simulation, error) {
	order, err := cfg.Order()
	if err != nil {
		return nil, err
	}
	edges, err := cfg.Edges()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]config.ComponentConfig, len(cfg.Components))
	for _, c := range cfg.Components {
		byName[c.Name] = c
	}

	s := &Simulation{
		cfg:     cfg,
		manager: bootseq.New(cfg.Name, opts...),
		log:     newEventLog(),
	}

	registered := make(map[string]*bootseq.Component, len(order))
	for _, name := range order {
		c := byName[name]

		deps := make([]bootseq.Dependency, 0, len(edges[name]))
		for _, dep := range edges[name] {
			deps = append(deps, bootseq.Dependency{Target: registered[dep.Name], KeepAlive: dep.IsKeepAlive()})
		}

		decl := bootseq.Declare().
			With(deps...).
			Up(s.action(name, bootseq.PhaseUp, c.Start)).
			Down(s.action(name, bootseq.PhaseDown, c.Stop))

		comp, err := s.manager.Component(name, decl)
		if err != nil {
			return nil, err
		}
		registered[name] = comp
	}

	return s, nil
}

// action returns a Func that sleeps for the configured duration, or until ctx is done, and fails if
// configured to.
func (s *Simulation) action(name string, ph bootseq.Phase, ac config.ActionConfig) bootseq.Func {
	return func(ctx context.Context) error {
		s.log.add(name, ph, true)
		defer s.log.add(name, ph, false)

		if ac.Duration > 0 {
			timer := time.NewTimer(ac.Duration)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if ac.Fail {
			return fmt.Errorf("%w: %s action of %q", ErrSimulatedFailure, ph, name)
		}
		return nil
	}
}

// Manager returns the underlying boot sequence.
func (s *Simulation) Manager() *bootseq.Manager {
	return s.manager
}

// Events returns the events recorded so far.
func (s *Simulation) Events() []Event {
	return s.log.Events()
}

// Report is the outcome of a full run of a simulation.
type Report struct {
	Startup []bootseq.StartupResult
	Stop    []bootseq.StopResult
	Events  []Event
}

// Degraded reports whether any component failed to start.
func (r Report) Degraded() bool {
	for _, res := range r.Startup {
		if res.IsFailure() {
			return true
		}
	}
	return false
}

// Order renders the recorded events as a single line, e.g. "db-up-begin, db-up-end".
func (r Report) Order() string {
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.String()
	}
	return strings.Join(names, ", ")
}

// Run starts the simulation and then stops it, both on exec. The configured timeout bounds each phase.
// A start timeout does not prevent the stop phase from being triggered.
func (s *Simulation) Run(ctx context.Context, exec bootseq.Executor) (Report, error) {
	var report Report

	up, startErr := s.manager.StartAndWait(ctx, exec, s.cfg.Timeout)
	report.Startup = up

	down, stopErr := s.manager.StopAndWait(ctx, exec, s.cfg.Timeout)
	report.Stop = down
	report.Events = s.log.Events()

	if startErr != nil {
		return report, fmt.Errorf("start: %w", startErr)
	}
	if stopErr != nil {
		return report, fmt.Errorf("stop: %w", stopErr)
	}
	return report, nil
}

// Executor returns the executor described by cfg: a PoolExecutor bounded by the configured number of
// workers, or a GoExecutor when no bound is configured.
func Executor(cfg *config.File) bootseq.Executor {
	if cfg.Workers > 0 {
		return bootseq.NewPoolExecutor(cfg.Workers)
	}
	return bootseq.GoExecutor{}
}
