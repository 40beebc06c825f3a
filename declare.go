package bootseq

import "context"

// Func is the type used for the start and stop actions of a component. The returned error is
// captured in the component's result; it is never returned from Manager.Start or Manager.Stop.
type Func func(ctx context.Context) error

// Dependency is a directed edge from a declaring component to Target. With KeepAlive set, Target's
// stop action waits until the declaring component has finished stopping.
type Dependency struct {
	Target    *Component
	KeepAlive bool
}

// KeepAlive returns a Dependency on c that also delays c's shutdown. This is the default edge kind.
func KeepAlive(c *Component) Dependency {
	return Dependency{Target: c, KeepAlive: true}
}

// NoKeepAlive returns a Dependency on c that only orders startup.
func NoKeepAlive(c *Component) Dependency {
	return Dependency{Target: c}
}

// Declaration collects the dependencies and actions of a component before it is registered with
// Manager.Component. Both Up and Down must be set.
//
//	db := bootseq.Must(seq.Component("db", bootseq.Declare().Up(openDB).Down(closeDB)))
//	api := bootseq.Must(seq.Component("api", bootseq.Declare().After(db).Up(serve).Down(drain)))
type Declaration struct {
	deps     []Dependency
	up, down Func
}

// Declare returns an empty Declaration.
func Declare() *Declaration {
	return &Declaration{}
}

// After adds keep-alive dependencies on the given components.
func (d *Declaration) After(cs ...*Component) *Declaration {
	for _, c := range cs {
		d.deps = append(d.deps, KeepAlive(c))
	}
	return d
}

// AfterNoKeepAlive adds dependencies on the given components that only order startup.
func (d *Declaration) AfterNoKeepAlive(cs ...*Component) *Declaration {
	for _, c := range cs {
		d.deps = append(d.deps, NoKeepAlive(c))
	}
	return d
}

// With adds already constructed dependency edges.
func (d *Declaration) With(deps ...Dependency) *Declaration {
	d.deps = append(d.deps, deps...)
	return d
}

// Up sets the start action.
func (d *Declaration) Up(fn Func) *Declaration {
	d.up = fn
	return d
}

// Down sets the stop action.
func (d *Declaration) Down(fn Func) *Declaration {
	d.down = fn
	return d
}

// Validate returns a NilFuncError unless both actions are set.
func (d *Declaration) Validate() error {
	switch {
	case d == nil || d.up == nil:
		return NilFuncError(missingUpMessage)
	case d.down == nil:
		return NilFuncError(missingDownMessage)
	}
	return nil
}

// NoOp (no operation) is a convenience function you can use in place of a Func for when you want an
// action that does nothing.
func NoOp(context.Context) error {
	return nil
}

// Must is a helper that wraps a function call returning (T, error) and panics if the error is non-nil.
// Only use Must in declaration code where a panic is acceptable.
func Must[T any](res T, err error) T {
	if err != nil {
		panic(err)
	}
	return res
}
