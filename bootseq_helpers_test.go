package bootseq

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errService = errors.New("service has failed")

// errOp (error operation) is an action that returns an error.
func errOp(context.Context) error {
	return errService
}

// panicOp (panic operation) is an action that panics.
func panicOp(context.Context) error {
	panic(errService.Error())
}

// sleepOp returns an action that sleeps for d.
func sleepOp(d time.Duration) Func {
	return func(context.Context) error {
		time.Sleep(d)
		return nil
	}
}

// recorder keeps an ordered log of action events such as "a-start-begin".
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// action returns a Func recording "<name>-<phase>-begin" and "<name>-<phase>-end" around an optional
// pause.
func (r *recorder) action(name, phase string, pause time.Duration) Func {
	return func(context.Context) error {
		r.add(name + "-" + phase + "-begin")
		if pause > 0 {
			time.Sleep(pause)
		}
		r.add(name + "-" + phase + "-end")
		return nil
	}
}

// index returns the position of event in the log, failing the test when it is missing.
func (r *recorder) index(t *testing.T, event string) int {
	t.Helper()

	i := slices.Index(r.snapshot(), event)
	require.GreaterOrEqual(t, i, 0, "event %q was not recorded", event)
	return i
}

// verifyBefore asserts that event a was recorded before event b.
func (r *recorder) verifyBefore(t *testing.T, a, b string) {
	t.Helper()

	require.Less(t, r.index(t, a), r.index(t, b), "expected %q before %q in %v", a, b, r.snapshot())
}

// probe counts invocations of an action.
type probe struct {
	calls atomic.Int32
	err   error
}

func (p *probe) fn(context.Context) error {
	p.calls.Add(1)
	return p.err
}

// await waits for a future with a generous deadline so broken coordination fails instead of hanging.
func await[T any](t *testing.T, f *Future[T]) T {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := f.Await(ctx)
	require.NoError(t, err)
	return v
}

// startStop runs a full startup followed by a full shutdown.
func startStop(t *testing.T, m *Manager) ([]StartupResult, []StopResult) {
	t.Helper()

	ctx := context.Background()
	up := await(t, m.Start(ctx, GoExecutor{}))
	down := await(t, m.Stop(ctx, GoExecutor{}))
	return up, down
}
