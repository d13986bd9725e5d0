package timer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDispatcherClosed is returned when a task is submitted after Close.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// TaskFunc is one unit of storage work executed on the worker goroutine.
type TaskFunc func() (any, error)

// Result carries a task's outcome back through its response channel.
// Errors travel as values; nothing is raised across the goroutine boundary.
type Result struct {
	Value any
	Err   error
}

type task struct {
	id   string
	name string
	fn   TaskFunc
	resp chan Result // nil for fire-and-forget submissions
}

// Dispatcher serializes all storage access onto a single worker goroutine.
// Tasks run strictly in submission order; the queue is unbounded and a task,
// once accepted, always eventually runs. A failing or panicking task never
// terminates the worker loop.
type Dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*task
	closed bool
	done   chan struct{}

	logger Logger
	idgen  IDGenerator
}

// NewDispatcher starts the worker goroutine. Call Close to drain and stop it.
func NewDispatcher(logger Logger, idgen IDGenerator) *Dispatcher {
	d := &Dispatcher{
		done:   make(chan struct{}),
		logger: logger,
		idgen:  idgen,
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// Call enqueues a task and blocks until the worker has executed it,
// returning the task's result. The wait is unbounded.
func (d *Dispatcher) Call(name string, fn TaskFunc) (any, error) {
	resp := make(chan Result, 1)
	if err := d.enqueue(name, fn, resp); err != nil {
		return nil, err
	}
	res := <-resp
	return res.Value, res.Err
}

// Submit enqueues a fire-and-forget task and returns immediately.
// Failures are logged by the worker but not reported to the caller.
func (d *Dispatcher) Submit(name string, fn TaskFunc) error {
	return d.enqueue(name, fn, nil)
}

func (d *Dispatcher) enqueue(name string, fn TaskFunc, resp chan Result) error {
	t := &task{id: d.idgen.New(), name: name, fn: fn, resp: resp}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.queue = append(d.queue, t)
	d.mu.Unlock()
	d.cond.Signal()
	return nil
}

// Close stops accepting new tasks, waits for the queue to drain, and stops
// the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.mu.Unlock()
	d.cond.Broadcast()
	<-d.done
}

// Len reports the number of queued, not-yet-started tasks.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *Dispatcher) run() {
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			// closed and drained
			d.mu.Unlock()
			close(d.done)
			return
		}
		t := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		res := d.execute(t)
		if t.resp != nil {
			t.resp <- res
		} else if res.Err != nil {
			d.logger.Error("task failed", "task", t.name, "task_id", t.id, "error", res.Err)
		}
	}
}

// execute runs one task, converting a panic into an error so the loop
// keeps processing subsequent tasks.
func (d *Dispatcher) execute(t *task) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("task %s panicked: %v", t.name, r)}
			d.logger.Error("task panicked", "task", t.name, "task_id", t.id, "panic", r)
		}
	}()

	d.logger.Debug("task start", "task", t.name, "task_id", t.id)
	v, err := t.fn()
	d.logger.Debug("task done", "task", t.name, "task_id", t.id, "ok", err == nil)
	return Result{Value: v, Err: err}
}
