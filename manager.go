package bootseq

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Manager provides registration of Components and drives the startup and shutdown of the resulting
// graph. Components are registered during a declaration phase; the graph is frozen by the first call
// to Start or Stop.
type Manager struct {
	sync.Mutex // Protects components and the phase flags.

	name       string
	options    *managerOptions
	logger     Logger
	components []*Component

	startCalled, stopCalled bool
	arm                     sync.Once

	startReq, stopReq *Future[request]

	startResults *Future[[]StartupResult]
	stopResults  *Future[[]StopResult]
	allStarted   *Future[struct{}]
	allStopped   *Future[struct{}]
}

// New returns a new and empty boot sequence Manager.
//
// Options can be provided to customize behavior:
//   - WithLogger: Sets a custom logger for sequence events
//   - WithMetrics: Records action durations and outcomes in Prometheus metrics
//   - WithRunID: Overrides the identifier attached to log messages
func New(name string, opts ...Option) *Manager {
	options := buildManagerOptions(opts...)
	return &Manager{
		name:         name,
		options:      options,
		logger:       withFields(options.logger, logrus.Fields{"sequence": name, "run_id": options.runID}),
		startReq:     NewFuture[request](),
		stopReq:      NewFuture[request](),
		startResults: NewFuture[[]StartupResult](),
		stopResults:  NewFuture[[]StopResult](),
		allStarted:   NewFuture[struct{}](),
		allStopped:   NewFuture[struct{}](),
	}
}

// Name returns the name of the boot sequence.
func (m *Manager) Name() string {
	return m.name
}

// RunID returns the identifier attached to log messages of this Manager.
func (m *Manager) RunID() string {
	return m.options.runID
}

// Component registers a new component built from decl and returns it. The declaration must carry
// both a start and a stop action, and every dependency must have been registered with this Manager.
// Names are not required to be unique.
//
// Component returns an InvalidStateError once Start or Stop has been called.
func (m *Manager) Component(name string, decl *Declaration) (*Component, error) {
	if err := decl.Validate(); err != nil {
		return nil, fmt.Errorf("component %q: %w", name, err)
	}

	m.Lock()
	defer m.Unlock()

	if m.startCalled || m.stopCalled {
		return nil, InvalidStateError(startedErrorMessage)
	}

	for _, dep := range decl.deps {
		if dep.Target == nil || dep.Target.mgr != m {
			depName := "<nil>"
			if dep.Target != nil {
				depName = dep.Target.name
			}
			return nil, &ForeignDependencyError{Component: name, Dependency: depName}
		}
	}

	c := newComponent(m, name, decl)
	m.components = append(m.components, c)
	m.logger.Info(fmt.Sprintf("Registered component %q with %d dependencies", name, len(c.deps)))
	return c, nil
}

// Register is a shorthand for Component with a Declaration made of up, down and deps.
func (m *Manager) Register(name string, up, down Func, deps ...Dependency) (*Component, error) {
	return m.Component(name, Declare().With(deps...).Up(up).Down(down))
}

// ComponentCount returns the number of components registered with the Manager.
func (m *Manager) ComponentCount() int {
	m.Lock()
	defer m.Unlock()

	return len(m.components)
}

// ComponentNames returns the name of each registered component, in registration order.
func (m *Manager) ComponentNames() []string {
	m.Lock()
	defer m.Unlock()

	ns := make([]string, 0, len(m.components))
	for _, c := range m.components {
		ns = append(ns, c.name)
	}

	return ns
}

// Components returns the registered components, in registration order.
func (m *Manager) Components() []*Component {
	m.Lock()
	defer m.Unlock()

	return append([]*Component(nil), m.components...)
}

// StartRequested returns a channel that is closed once Start has been called.
func (m *Manager) StartRequested() <-chan struct{} {
	return m.startReq.Done()
}

// StopRequested returns a channel that is closed once Stop has been called.
func (m *Manager) StopRequested() <-chan struct{} {
	return m.stopReq.Done()
}

// AllStarted returns a future that completes once every component has published a startup result.
func (m *Manager) AllStarted() *Future[struct{}] {
	return m.allStarted
}

// AllStopped returns a future that completes once every component has published a stop result.
func (m *Manager) AllStopped() *Future[struct{}] {
	return m.allStopped
}

// Start triggers the startup phase. Every component's start action runs on exec as soon as all of its
// dependencies have published a startup result; a nil exec means GoExecutor. ctx is handed to the
// start actions and is not used for cancellation by the Manager.
//
// Start returns a future resolving to the startup results in registration order. Calling Start again
// has no effect and returns the same future.
func (m *Manager) Start(ctx context.Context, exec Executor) *Future[[]StartupResult] {
	if exec == nil {
		exec = GoExecutor{}
	}

	m.Lock()
	if m.startCalled {
		m.Unlock()
		m.logger.Error("Start called more than once, ignoring")
		return m.startResults
	}
	m.startCalled = true
	components := m.components
	// The signal fires under the lock and before any start action is dispatched. A stop path that
	// sees it pending dispatches its stop action at once and the component's start action is held
	// back until that stop action returns.
	req := request{ctx: ctx, exec: exec}
	m.startReq.Complete(req)
	m.Unlock()

	m.logger.Info(fmt.Sprintf("Starting %d components", len(components)))
	m.armOnce(components)

	begin := time.Now()
	starts := make([]*Future[StartupResult], len(components))
	for i, c := range components {
		starts[i] = c.started
	}
	whenAll(starts, func(fs []*Future[StartupResult]) {
		results := make([]StartupResult, len(fs))
		failed := 0
		for i, f := range fs {
			res, err, _ := f.Result()
			if err != nil {
				res = startupBug(components[i].name, err)
			}
			if res.IsFailure() {
				failed++
			}
			results[i] = res
		}
		m.logger.Info(fmt.Sprintf("All components started (%d failed, took %dms)", failed, time.Since(begin).Milliseconds()))
		m.startResults.Complete(results)
		m.allStarted.Complete(struct{}{})
	})

	for _, c := range components {
		c.awaitStart(req)
	}
	return m.startResults
}

// Stop triggers the shutdown phase. A component's stop action runs on exec once every component that
// depends on it with keep-alive has published a stop result; a nil exec means GoExecutor. Stop actions
// run whether or not the component started successfully.
//
// Stop may be called before Start, in which case stop actions do not wait for startup at all. Stop
// returns a future resolving to the stop results in registration order. Calling Stop again has no
// effect and returns the same future.
func (m *Manager) Stop(ctx context.Context, exec Executor) *Future[[]StopResult] {
	if exec == nil {
		exec = GoExecutor{}
	}

	m.Lock()
	if m.stopCalled {
		m.Unlock()
		m.logger.Error("Stop called more than once, ignoring")
		return m.stopResults
	}
	m.stopCalled = true
	components := m.components
	m.Unlock()

	m.logger.Info(fmt.Sprintf("Stopping %d components", len(components)))
	m.armOnce(components)
	m.stopReq.Complete(request{ctx: ctx, exec: exec})
	return m.stopResults
}

// armOnce arms the stop path of every component and the stop aggregate. It runs on the first call to
// either Start or Stop.
func (m *Manager) armOnce(components []*Component) {
	m.arm.Do(func() {
		for _, c := range components {
			c.awaitStop()
		}

		stops := make([]*Future[StopResult], len(components))
		for i, c := range components {
			stops[i] = c.stopped
		}
		m.stopReq.OnComplete(func(request, error) {
			m.aggregateStops(components, stops)
		})
	})
}

// aggregateStops completes the stop results and AllStopped once every component has published a stop
// result.
func (m *Manager) aggregateStops(components []*Component, stops []*Future[StopResult]) {
	whenAll(stops, func(fs []*Future[StopResult]) {
		results := make([]StopResult, len(fs))
		failed := 0
		for i, f := range fs {
			res, err, _ := f.Result()
			if err != nil {
				res = stopBug(components[i].name, err)
			}
			if res.IsFailure() {
				failed++
			}
			results[i] = res
		}
		m.logger.Info(fmt.Sprintf("All components stopped (%d failed)", failed))
		m.stopResults.Complete(results)
		m.allStopped.Complete(struct{}{})
	})
}

// StartAndWait calls Start and blocks until every component has published a startup result, ctx is
// done, or timeout elapses. A timeout of zero or less waits without a limit. Hitting the timeout
// returns ErrTimeout but does not abort start actions that are still running.
func (m *Manager) StartAndWait(ctx context.Context, exec Executor, timeout time.Duration) ([]StartupResult, error) {
	return awaitTimeout(ctx, m.Start(ctx, exec), timeout)
}

// StopAndWait calls Stop and blocks until every component has published a stop result, ctx is done,
// or timeout elapses. It behaves like StartAndWait with respect to timeouts.
func (m *Manager) StopAndWait(ctx context.Context, exec Executor, timeout time.Duration) ([]StopResult, error) {
	return awaitTimeout(ctx, m.Stop(ctx, exec), timeout)
}

func awaitTimeout[T any](ctx context.Context, f *Future[T], timeout time.Duration) (T, error) {
	if timeout <= 0 {
		return f.Await(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := f.Await(waitCtx)
	if err != nil && ctx.Err() == nil {
		return v, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return v, err
}

// String returns a representation of the registered components grouped by depth in the dependency
// graph. Component names are wrapped in parentheses and separated by a colon when they might run
// concurrently, and groups are joined by a right-arrow when one group starts after the other.
// Names within a group are sorted alphabetically for reasons of reproducibility.
func (m *Manager) String() string {
	components := m.Components()
	if len(components) == 0 {
		return ""
	}

	levels := make(map[*Component]int, len(components))
	var level func(c *Component) int
	level = func(c *Component) int {
		if l, ok := levels[c]; ok {
			return l
		}
		l := 1
		for _, dep := range c.deps {
			if dl := level(dep.Target) + 1; dl > l {
				l = dl
			}
		}
		levels[c] = l
		return l
	}

	groups := make(map[int][]string)
	maxLevel := 0
	for _, c := range components {
		l := level(c)
		groups[l] = append(groups[l], c.name)
		if l > maxLevel {
			maxLevel = l
		}
	}

	parts := make([]string, 0, maxLevel)
	for i := 1; i <= maxLevel; i++ {
		names := groups[i]
		sort.Strings(names)
		parts = append(parts, "("+strings.Join(names, " : ")+")")
	}

	return strings.Join(parts, " > ")
}
