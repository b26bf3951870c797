package session

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of values into one trailing call.
//
// Every Trigger restarts the quiet period; when it elapses fn runs once with
// the most recent value. Values replaced before firing are counted as
// dropped.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	idle    *sync.Cond // signalled when running drops to zero
	timer   *time.Timer
	pending T
	armed   bool
	dropped int
	gen     uint64
	running int
}

// NewDebouncer returns a debouncer that calls fn after delay of quiet.
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	d := &Debouncer[T]{delay: delay, fn: fn}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger records v as the latest value and restarts the timer.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.armed {
		d.dropped++
	}
	d.pending = v
	d.armed = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if !d.armed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.running++
	d.mu.Unlock()
	d.call(v)
}

// call runs fn with running already counted under mu.
func (d *Debouncer[T]) call(v T) {
	defer func() {
		d.mu.Lock()
		d.running--
		if d.running == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}()
	d.fn(v)
}

// Flush runs fn immediately with the pending value, if any. It reports
// whether a value was flushed.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.pending
	d.armed = false
	d.gen++
	d.running++
	d.mu.Unlock()
	d.call(v)
	return true
}

// Wait blocks until no call of fn is in progress, including one started by
// the timer just before a Flush or Stop.
func (d *Debouncer[T]) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.running > 0 {
		d.idle.Wait()
	}
}

// Stop discards any pending value without calling fn.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
	d.gen++
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Dropped returns how many values were superseded before firing.
func (d *Debouncer[T]) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
