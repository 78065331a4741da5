// Package typing implements a keepalive controller for platform typing
// indicators, which expire on their own after a few seconds.
package typing

import (
	"sync"
	"time"
)

// Options configures a Controller.
type Options struct {
	// MaxDuration is the TTL safety net: the controller stops itself
	// after this long even if Stop is never called.
	MaxDuration time.Duration
	// KeepaliveInterval is how often StartFn is re-invoked to keep the
	// indicator alive.
	KeepaliveInterval time.Duration
	// StartFn triggers the typing indicator once.
	StartFn func() error
}

// Controller keeps a typing indicator alive until stopped or until its
// TTL lapses. Safe to Stop multiple times.
type Controller struct {
	opts Options
	stop chan struct{}
	once sync.Once
}

func New(opts Options) *Controller {
	return &Controller{opts: opts, stop: make(chan struct{})}
}

// Start fires the indicator immediately and begins the keepalive loop.
func (c *Controller) Start() {
	_ = c.opts.StartFn()
	go c.loop()
}

func (c *Controller) loop() {
	ticker := time.NewTicker(c.opts.KeepaliveInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(c.opts.MaxDuration)
	defer deadline.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			_ = c.opts.StartFn()
		}
	}
}

// Stop ends the keepalive loop.
func (c *Controller) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Stopped reports whether Stop has been called.
func (c *Controller) Stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}
