package store

import "sync/atomic"

// Subscription is the ownership token for one open live query or document
// watch. It must be released exactly once; Release reports whether this
// call was the one that released it, so double releases are detectable by
// the caller without being unsafe.
type Subscription struct {
	released atomic.Bool
	stop     func()
}

// NewSubscription wraps a store-specific stop function. Implementations
// must route every delivery through Deliver (or check Active themselves)
// so snapshots arriving after release are dropped, not applied.
func NewSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

// Release tears the subscription down. The first call runs the stop
// function and returns true; every later call is a no-op returning false.
func (s *Subscription) Release() bool {
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	if s.stop != nil {
		s.stop()
	}
	return true
}

// Active reports whether the subscription has not yet been released.
func (s *Subscription) Active() bool {
	return !s.released.Load()
}

// Deliver invokes fn only while the subscription is active. Deliveries
// racing with Release may still observe Active; final suppression of late
// snapshots is the consumer's responsibility (the session layer checks
// again under its own lock).
func (s *Subscription) Deliver(fn func()) {
	if s.Active() {
		fn()
	}
}
