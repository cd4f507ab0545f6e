package docmerge

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// DefaultMaxPoolSize caps derived pool sizes. Each convert worker runs its
	// own LibreOffice instance (~150MB).
	DefaultMaxPoolSize = 8

	// cpuDivisor leaves headroom for renderer child processes.
	cpuDivisor = 2
)

// ResolvePoolSize determines a pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation clamped to
// [MinPoolSize, ceiling]. A ceiling <= 0 means DefaultMaxPoolSize.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers, ceiling int) int {
	if workers > 0 {
		return workers
	}
	if ceiling <= 0 {
		ceiling = DefaultMaxPoolSize
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > ceiling {
		return ceiling
	}
	return n
}

// Outcome is the result of one pool task.
type Outcome[T, R any] struct {
	Task  T
	Value R
	Err   error
}

// Pool runs a function over tasks with a bounded number of goroutines.
type Pool[T, R any] struct {
	size int
	fn   func(context.Context, T) (R, error)
}

// NewPool creates a pool of size workers running fn. Sizes below 1 become 1.
func NewPool[T, R any](size int, fn func(context.Context, T) (R, error)) *Pool[T, R] {
	if size < MinPoolSize {
		size = MinPoolSize
	}
	return &Pool[T, R]{size: size, fn: fn}
}

// Size returns the pool capacity.
func (p *Pool[T, R]) Size() int {
	return p.size
}

// Start dispatches tasks to min(size, len(tasks)) workers and returns
// immediately. Outcomes arrive in completion order.
func (p *Pool[T, R]) Start(ctx context.Context, tasks []T) *Batch[T, R] {
	b := &Batch[T, R]{
		results: make(chan Outcome[T, R], len(tasks)),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	jobs := make(chan T, len(tasks))
	for _, t := range tasks {
		jobs <- t
	}
	close(jobs)

	workers := min(p.size, len(tasks))
	b.wg.Add(workers)
	for range workers {
		go func() {
			defer b.wg.Done()
			for {
				select {
				case <-b.stop:
					return
				default:
				}
				task, ok := <-jobs
				if !ok {
					return
				}
				b.results <- p.run(ctx, task)
			}
		}()
	}

	go func() {
		b.wg.Wait()
		close(b.results)
		close(b.done)
	}()

	return b
}

// run executes one task. Panics become task errors; a done context fails the
// task without calling fn.
func (p *Pool[T, R]) run(ctx context.Context, task T) (out Outcome[T, R]) {
	out.Task = task
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	out.Value, out.Err = p.fn(ctx, task)
	return out
}

// Batch is one Start call in progress.
type Batch[T, R any] struct {
	results  chan Outcome[T, R]
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// Results delivers outcomes as tasks complete. The channel is closed once
// every worker has exited.
func (b *Batch[T, R]) Results() <-chan Outcome[T, R] {
	return b.results
}

// Abandon stops dispatching tasks that have not started and blocks until
// in-flight tasks return. Their outcomes are left unread.
func (b *Batch[T, R]) Abandon() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}

// Wait blocks until every worker has exited.
func (b *Batch[T, R]) Wait() {
	<-b.done
}

// Collect runs tasks to completion and returns their outcomes in completion
// order. On the first failure it abandons the rest and returns that error.
func (p *Pool[T, R]) Collect(ctx context.Context, tasks []T) ([]Outcome[T, R], error) {
	b := p.Start(ctx, tasks)
	outcomes := make([]Outcome[T, R], 0, len(tasks))
	for o := range b.Results() {
		if o.Err != nil {
			b.Abandon()
			return outcomes, o.Err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}
