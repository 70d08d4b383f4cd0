// package syncer reconciles reader state with the catalog backend: the
// per-book reading-progress record and the per-page notes collection.
// All pushes are debounced and best-effort; a failing backend never
// blocks reading.
package syncer

import (
	"sync"
	"time"
)

// Debouncer delays an action until a quiet period has elapsed since the
// last trigger, coalescing rapid repeated triggers into one. Stop cancels
// any pending action so nothing fires after teardown.
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	timer   *time.Timer
	pending func()
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Trigger schedules fn to run after the quiet period. A pending action
// is replaced, so only the last state before the quiet period fires.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	stopped := d.stopped
	d.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Flush runs any pending action immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
	stopped := d.stopped
	d.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Stop cancels any pending action and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}
