package bootseq

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolExecutor(t *testing.T) {
	t.Parallel()

	t.Run("it never runs more tasks than the limit", func(t *testing.T) {
		t.Parallel()

		var running, peak, done atomic.Int32
		pool := NewPoolExecutor(3)
		for range 12 {
			pool.Go(func() {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				done.Add(1)
			})
		}
		pool.Wait()

		assert.Equal(t, int32(12), done.Load())
		assert.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("it accepts tasks scheduled from tasks", func(t *testing.T) {
		t.Parallel()

		var done atomic.Int32
		pool := NewPoolExecutor(1)
		pool.Go(func() {
			pool.Go(func() { done.Add(1) })
			done.Add(1)
		})
		pool.Wait()

		assert.Equal(t, int32(2), done.Load())
	})

	t.Run("it is unbounded below a limit of one", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		var running atomic.Int32
		pool := NewPoolExecutor(0)
		for range 5 {
			pool.Go(func() {
				running.Add(1)
				<-release
			})
		}

		assert.Eventually(t, func() bool { return running.Load() == 5 }, time.Second, time.Millisecond)
		close(release)
		pool.Wait()
	})
}

func TestGoExecutor(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	GoExecutor{}.Go(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected task to run")
	}
}
