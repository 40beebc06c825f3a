package bootseq

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Executor runs start and stop actions once their preconditions hold. The Manager never blocks a task
// waiting on another task; all ordering is done before a task is handed to Go.
type Executor interface {
	Go(fn func())
}

// GoExecutor runs every task on its own goroutine.
type GoExecutor struct{}

// Go runs fn on a new goroutine.
func (GoExecutor) Go(fn func()) {
	go fn()
}

// PoolExecutor runs tasks on at most limit goroutines at a time. Tasks beyond the limit are queued
// and started as soon as a slot frees up.
type PoolExecutor struct {
	group   errgroup.Group
	pending sync.WaitGroup // Covers queued tasks the group has not admitted yet.
}

// NewPoolExecutor returns a PoolExecutor allowing limit concurrent tasks. A limit below 1 removes the
// bound.
func NewPoolExecutor(limit int) *PoolExecutor {
	p := &PoolExecutor{}
	if limit < 1 {
		limit = -1
	}
	p.group.SetLimit(limit)
	return p
}

// Go schedules fn on the pool. It never blocks the caller, which may itself be a pool task.
func (p *PoolExecutor) Go(fn func()) {
	p.pending.Add(1)
	task := func() error {
		defer p.pending.Done()
		fn()
		return nil
	}
	if p.group.TryGo(task) {
		return
	}
	go p.group.Go(task)
}

// Wait blocks until every task handed to the pool so far has returned.
func (p *PoolExecutor) Wait() {
	p.pending.Wait()
	_ = p.group.Wait()
}

// Check that executors satisfy the Executor interface.
var _ Executor = GoExecutor{}
var _ Executor = &PoolExecutor{}
