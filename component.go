package bootseq

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Component is a node of the boot sequence graph. It is created by Manager.Component and owned by
// that Manager for its whole life. Its start result and stop result are each published exactly once.
type Component struct {
	name     string
	mgr      *Manager
	deps     []Dependency
	up, down Func

	started *Future[StartupResult]
	stopped *Future[StopResult]

	// reverse holds the stop futures of components that depend on this one with keep-alive. It is
	// only appended to during registration.
	reverse []*Future[StopResult]

	// guard protects stopping and afterStop. A stop action dispatched before Start holds back the
	// component's start action until it returns.
	guard     sync.Mutex
	stopping  bool
	afterStop func()
}

func newComponent(m *Manager, name string, d *Declaration) *Component {
	c := &Component{
		name:    name,
		mgr:     m,
		deps:    append([]Dependency(nil), d.deps...),
		up:      d.up,
		down:    d.down,
		started: NewFuture[StartupResult](),
		stopped: NewFuture[StopResult](),
	}

	for _, dep := range c.deps {
		if dep.KeepAlive {
			dep.Target.reverse = append(dep.Target.reverse, c.stopped)
		}
	}

	return c
}

// Name returns the name of the component.
func (c *Component) Name() string {
	return c.name
}

// Dependencies returns a copy of the declared dependency edges, in declaration order.
func (c *Component) Dependencies() []Dependency {
	return append([]Dependency(nil), c.deps...)
}

// Started returns the future holding the component's startup result. It is broken (failed with a
// *CoordinationError) only if the coordination machinery itself failed.
func (c *Component) Started() *Future[StartupResult] {
	return c.started
}

// Stopped returns the future holding the component's shutdown result.
func (c *Component) Stopped() *Future[StopResult] {
	return c.stopped
}

// request is the payload of the Manager's phase signals: the context handed to actions and the
// executor they run on.
type request struct {
	ctx  context.Context
	exec Executor
}

// awaitStart arms the start path. Once every dependency has published a startup result, the start
// action is handed to the executor, or skipped with a dependency error if any dependency failed.
func (c *Component) awaitStart(req request) {
	deps := make([]*Future[StartupResult], len(c.deps))
	for i, dep := range c.deps {
		deps[i] = dep.Target.started
	}

	whenAll(deps, func(fs []*Future[StartupResult]) {
		defer c.recoverCoordination(PhaseUp)

		var missing []string
		for i, f := range fs {
			res, err, _ := f.Result()
			if err != nil {
				c.breakStart(fmt.Errorf("dependency %q is broken: %w", c.deps[i].Target.name, err))
				return
			}
			if res.IsFailure() {
				missing = append(missing, c.deps[i].Target.name)
			}
		}

		if len(missing) > 0 {
			res := startupDependencyError(c.name, missing)
			c.mgr.logger.Error(res.Err.Error())
			c.publishStart(res)
			return
		}

		dispatch := func() {
			req.exec.Go(func() {
				if err := c.invoke(req.ctx, PhaseUp, c.up); err != nil {
					c.publishStart(startupFailed(c.name, err))
					return
				}
				c.publishStart(startupOkay(c.name))
			})
		}

		c.guard.Lock()
		if c.stopping {
			c.afterStop = dispatch
			c.guard.Unlock()
			return
		}
		c.guard.Unlock()
		dispatch()
	})
}

// awaitStop arms the stop path. The stop action runs once the Manager's stop signal has fired and
// every keep-alive dependent has published its stop result. If startup was requested before the stop
// action became ready, it also waits for this component's own startup result. Otherwise the stop
// action is dispatched at once and a later start action waits for it, so the two actions of a
// component never overlap.
func (c *Component) awaitStop() {
	c.mgr.stopReq.OnComplete(func(req request, err error) {
		if err != nil {
			c.breakStop(err)
			return
		}

		whenAll(c.reverse, func(fs []*Future[StopResult]) {
			defer c.recoverCoordination(PhaseDown)

			for _, f := range fs {
				if _, err, _ := f.Result(); err != nil {
					c.mgr.logger.Error(fmt.Sprintf("Component %q: dependent stopped with broken result, stopping anyway: %v", c.name, err))
				}
			}

			run := func() {
				req.exec.Go(func() {
					err := c.invoke(req.ctx, PhaseDown, c.down)
					next := c.finishStop()
					if err != nil {
						c.publishStop(stopFailure(c.name, err))
					} else {
						c.publishStop(stopOkay(c.name))
					}
					if next != nil {
						next()
					}
				})
			}

			// startReq is completed before any start path is armed, so checking it under the guard
			// orders this decision against the start path's check of stopping.
			c.guard.Lock()
			select {
			case <-c.mgr.startReq.Done():
				c.guard.Unlock()
				c.started.OnComplete(func(StartupResult, error) { run() })
			default:
				c.stopping = true
				c.guard.Unlock()
				run()
			}
		})
	})
}

// invoke runs a single action, capturing panics as *PanicError and recording timing information.
func (c *Component) invoke(ctx context.Context, ph Phase, fn Func) (err error) {
	m := c.mgr
	m.logger.Info(fmt.Sprintf("Running %s action of %q", ph, c.name))
	m.options.metrics.actionStarted(ph)
	begin := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}

		took := time.Since(begin)
		m.options.metrics.actionDone(c.name, ph, took)
		if err != nil {
			m.logger.Error(fmt.Sprintf("%s action of %q failed after %dms: %v", ph, c.name, took.Milliseconds(), err))
			return
		}
		m.logger.Info(fmt.Sprintf("%s action of %q done (took %dms)", ph, c.name, took.Milliseconds()))
	}()

	return fn(ctx)
}

// finishStop clears the stopping flag and returns the start dispatch held back by it, if any.
func (c *Component) finishStop() func() {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.stopping = false
	next := c.afterStop
	c.afterStop = nil
	return next
}

func (c *Component) publishStart(res StartupResult) {
	if c.started.Complete(res) {
		c.mgr.options.metrics.published(PhaseUp, res.Kind.String())
	}
}

func (c *Component) publishStop(res StopResult) {
	if c.stopped.Complete(res) {
		c.mgr.options.metrics.published(PhaseDown, res.Kind.String())
	}
}

func (c *Component) breakStart(err error) {
	cerr := &CoordinationError{Component: c.name, Phase: PhaseUp, Err: err}
	c.mgr.logger.Error(cerr.Error())
	if c.started.Fail(cerr) {
		c.mgr.options.metrics.published(PhaseUp, StartupBug.String())
	}
}

func (c *Component) breakStop(err error) {
	cerr := &CoordinationError{Component: c.name, Phase: PhaseDown, Err: err}
	c.mgr.logger.Error(cerr.Error())
	if c.stopped.Fail(cerr) {
		c.mgr.options.metrics.published(PhaseDown, StopBug.String())
	}
}

// recoverCoordination turns a panic inside a continuation into a broken future for the given phase.
func (c *Component) recoverCoordination(ph Phase) {
	r := recover()
	if r == nil {
		return
	}
	err := fmt.Errorf("panic: %v", r)
	if ph == PhaseUp {
		c.breakStart(err)
		return
	}
	c.breakStop(err)
}
