// Package payload defines the in-flight request type owned by the scheduler
// between enqueue and dequeue/reject/shutdown.
package payload

import (
	"github.com/google/uuid"

	"github.com/sheerbytes/batchsched/internal/objpool"
)

// Request is the opaque handle the scheduler carries but never interprets.
// It owns the input tensors and request metadata; the runner on the other
// end of the pipe is the only party that reads it.
type Request interface {
	// Inputs returns the names of inputs the request carries, in no
	// particular order. ShapeCompatibility uses this to find the inputs
	// that participate in the enforce-equal-shape-tensors set.
	Inputs() []string

	// InputShape returns the declared dimensions of the named input.
	// Returns false if the input does not exist.
	InputShape(name string) ([]int64, bool)

	// TimeoutMs is the request's own per-request deadline override, or 0
	// if unset.
	TimeoutMs() uint32

	// BatchSize is the number of batch-size units this request
	// contributes toward max_batch_size.
	BatchSize() uint32
}

// CompletionStatus is surfaced to the client via a Payload's completion
// callback. The scheduler core reports StatusDeadlineExceeded and
// StatusShuttingDown; StatusDequeued is reported by a runner for payloads
// it received in a sealed batch.
type CompletionStatus int

const (
	// StatusDequeued indicates normal hand-off to a runner; callers
	// generally do not invoke OnComplete for this case themselves, as
	// the runner owns completion once the batch is sealed.
	StatusDequeued CompletionStatus = iota
	StatusDeadlineExceeded
	StatusShuttingDown
)

// Stats is the observability handle attached to a Payload. It is
// deliberately minimal: the scheduler core does not emit metrics itself
// (see spec Non-goals); Stats exists so a caller-supplied collector can be
// threaded through without the scheduler needing to know about it.
type Stats struct {
	QueueStartNs uint64
	QueueEndNs   uint64
}

// CompletionFunc is invoked by the scheduler core at most once, when a
// Payload leaves the queue other than by a normal Dequeue into a sealed
// batch. After sealing, the runner that received the batch may invoke it.
type CompletionFunc func(status CompletionStatus, err error)

// statsPool recycles Stats handles across requests, since at high request
// rates a fresh allocation per enqueue is the dominant source of GC
// pressure on this hot path.
var statsPool = objpool.New(
	func() *Stats { return &Stats{} },
	func(s *Stats) { *s = Stats{} },
)

// Payload is one inference request in flight inside the scheduler.
type Payload struct {
	ID         string
	Request    Request
	QueueStart uint64
	TimeoutMs  uint32
	BatchSize  uint32
	Stats      *Stats
	OnComplete CompletionFunc
}

// New wraps req into a Payload, stamping a fresh correlation ID and
// capturing the enqueue timestamp from now.
func New(req Request, timeoutMs uint32, now uint64, onComplete CompletionFunc) *Payload {
	bs := req.BatchSize()
	if bs == 0 {
		bs = 1
	}
	stats := statsPool.Get()
	stats.QueueStartNs = now

	return &Payload{
		ID:         uuid.NewString(),
		Request:    req,
		QueueStart: now,
		TimeoutMs:  timeoutMs,
		BatchSize:  bs,
		Stats:      stats,
		OnComplete: onComplete,
	}
}

// Complete invokes OnComplete if set, and is safe to call on a nil callback.
func (p *Payload) Complete(status CompletionStatus, err error) {
	if p.OnComplete != nil {
		p.OnComplete(status, err)
	}
}

// Release returns p's Stats handle to the pool for reuse. Callers invoke
// this once a Payload has left the scheduler for good -- handed to a
// runner, rejected, or abandoned on shutdown -- and will not read p.Stats
// again afterward.
func (p *Payload) Release() {
	if p.Stats != nil {
		statsPool.Put(p.Stats)
		p.Stats = nil
	}
}
