package orchestration

import (
	"sync"
	"sync/atomic"
)

// Cancellation is the one-way stop signal of a single exchange. Once
// requested it stays requested.
type Cancellation struct {
	cancelled atomic.Bool

	mu       sync.Mutex
	onCancel []func()
}

// RequestCancel flips the signal and reports whether this call did so.
// Calls after the first one have no effect.
func (c *Cancellation) RequestCancel() bool {
	if !c.cancelled.CompareAndSwap(false, true) {
		return false
	}

	c.mu.Lock()
	hooks := c.onCancel
	c.onCancel = nil
	c.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return true
}

func (c *Cancellation) IsCancelled() bool {
	return c.cancelled.Load()
}

// afterCancel registers f to run once cancellation is requested. f runs
// immediately when it already was.
func (c *Cancellation) afterCancel(f func()) {
	c.mu.Lock()
	if !c.cancelled.Load() {
		c.onCancel = append(c.onCancel, f)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	f()
}
