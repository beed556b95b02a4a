package clock

import "sync/atomic"

// Manual is a Clock for tests: it never advances on its own.
type Manual struct {
	ns atomic.Uint64
}

// NewManual returns a Manual clock starting at the given nanosecond value.
func NewManual(startNs uint64) *Manual {
	m := &Manual{}
	m.ns.Store(startNs)
	return m
}

func (m *Manual) Now() uint64 {
	return m.ns.Load()
}

// Advance moves the clock forward by delta nanoseconds and returns the new value.
func (m *Manual) Advance(delta uint64) uint64 {
	return m.ns.Add(delta)
}

// Set pins the clock to an absolute nanosecond value.
func (m *Manual) Set(ns uint64) {
	m.ns.Store(ns)
}
