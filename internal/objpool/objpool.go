// Package objpool provides a generic pool of reusable objects, adapted
// from a fixed-size byte-buffer pool into a type-parameterized pool so the
// scheduler's hot path can recycle per-request Stats handles instead of
// allocating one per enqueue.
package objpool

import "sync"

// Pool recycles *T values to reduce allocations and GC pressure on a hot
// path. Reset is called before an object is returned to the pool so a
// stale observer never sees a previous request's data.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T)
}

// New creates a pool whose values are produced by newVal and cleared by
// reset before reuse.
func New[T any](newVal func() *T, reset func(*T)) *Pool[T] {
	if newVal == nil {
		panic("objpool: newVal must not be nil")
	}
	p := &Pool[T]{reset: reset}
	p.pool.New = func() any {
		return newVal()
	}
	return p
}

// Get returns a value from the pool, or a freshly constructed one if the
// pool is empty.
func (p *Pool[T]) Get() *T {
	return p.pool.Get().(*T)
}

// Put resets v and returns it to the pool for reuse.
func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	if p.reset != nil {
		p.reset(v)
	}
	p.pool.Put(v)
}
