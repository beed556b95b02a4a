// Package policyqueue implements one priority level's queue: a FIFO of
// payloads with per-item absolute timeout deadlines, a delayed sub-queue,
// and a rejected sub-queue, enforcing a max-queue-size admission policy.
package policyqueue

import (
	"fmt"

	"github.com/sheerbytes/batchsched/pkg/config"
	"github.com/sheerbytes/batchsched/pkg/payload"
	"github.com/sheerbytes/batchsched/pkg/schederr"
)

// Queue is one priority level's PolicyQueue.
//
// Invariants (not checked at runtime, to keep the hot path
// allocation-free): len(queue) == len(timeouts); a Payload appears in at
// most one of {queue, delayed, rejected}; if MaxQueueSize > 0 then
// len(queue) <= MaxQueueSize right after a successful Enqueue. Delayed
// payloads do not count toward MaxQueueSize.
type Queue struct {
	cfg config.PolicyConfig

	queue    []*payload.Payload
	timeouts []uint64 // 1:1 with queue; 0 = no deadline

	delayed  []*payload.Payload
	rejected []*payload.Payload
}

// New returns an empty PolicyQueue governed by cfg.
func New(cfg config.PolicyConfig) *Queue {
	return &Queue{cfg: cfg}
}

// Enqueue appends p to the live queue, computing its absolute deadline from
// now. Fails with ErrUnavailable if MaxQueueSize > 0 and the live queue is
// already at capacity.
func (q *Queue) Enqueue(p *payload.Payload, now uint64) error {
	if q.cfg.MaxQueueSize > 0 && uint32(len(q.queue)) >= q.cfg.MaxQueueSize {
		return fmt.Errorf("policyqueue: %w", schederr.ErrUnavailable)
	}

	effectiveTimeoutMs := q.cfg.DefaultTimeoutMs
	if q.cfg.AllowTimeoutOverride && p.TimeoutMs != 0 && p.TimeoutMs < effectiveTimeoutMs {
		effectiveTimeoutMs = p.TimeoutMs
	}

	var deadline uint64
	if effectiveTimeoutMs != 0 {
		deadline = now + uint64(effectiveTimeoutMs)*1e6
	}

	q.queue = append(q.queue, p)
	q.timeouts = append(q.timeouts, deadline)
	return nil
}

// Dequeue removes and returns the front of the live queue if nonempty,
// otherwise the front of the delayed queue. Returns ErrInvalidArgument if
// both are empty.
func (q *Queue) Dequeue() (*payload.Payload, error) {
	if len(q.queue) > 0 {
		p := q.queue[0]
		q.queue = q.queue[1:]
		q.timeouts = q.timeouts[1:]
		return p, nil
	}
	if len(q.delayed) > 0 {
		p := q.delayed[0]
		q.delayed = q.delayed[1:]
		return p, nil
	}
	return nil, fmt.Errorf("policyqueue: dequeue on empty queue: %w", schederr.ErrInvalidArgument)
}

// ApplyPolicy scans the live queue starting at idx, evicting any payload
// whose deadline (nonzero) has strictly elapsed relative to now. Eviction
// routes to the delayed queue under ActionDelay, else to the rejected queue
// (counted in the returned rejectedCount/rejectedBatchSize). Because
// eviction shifts later positions down by one, idx is re-examined after
// each eviction rather than advanced.
//
// Returns true iff, after the scan, idx identifies a valid payload: either
// an unexpired live item at idx, or the (idx-len(queue))'th delayed item.
// The delayed queue's own items are never re-examined for expiry.
func (q *Queue) ApplyPolicy(idx int, now uint64) (ok bool, rejectedCount int, rejectedBatchSize uint32) {
	for idx < len(q.queue) {
		deadline := q.timeouts[idx]
		if deadline == 0 || now <= deadline {
			return true, rejectedCount, rejectedBatchSize
		}

		evicted := q.queue[idx]
		q.queue = append(q.queue[:idx], q.queue[idx+1:]...)
		q.timeouts = append(q.timeouts[:idx], q.timeouts[idx+1:]...)

		if q.cfg.TimeoutAction == config.ActionDelay {
			q.delayed = append(q.delayed, evicted)
		} else {
			q.rejected = append(q.rejected, evicted)
			rejectedCount++
			rejectedBatchSize += evicted.BatchSize
		}
	}
	return (idx - len(q.queue)) < len(q.delayed), rejectedCount, rejectedBatchSize
}

// At returns the payload at idx in the concatenation live ++ delayed.
func (q *Queue) At(idx int) (*payload.Payload, bool) {
	if idx < len(q.queue) {
		return q.queue[idx], true
	}
	di := idx - len(q.queue)
	if di < len(q.delayed) {
		return q.delayed[di], true
	}
	return nil, false
}

// TimeoutAt returns the deadline at idx, or 0 for delayed items (which have
// no active deadline) and for idx out of range.
func (q *Queue) TimeoutAt(idx int) uint64 {
	if idx < len(q.queue) {
		return q.timeouts[idx]
	}
	return 0
}

// ReleaseRejectedQueue atomically takes and returns the rejected sub-queue.
func (q *Queue) ReleaseRejectedQueue() []*payload.Payload {
	res := q.rejected
	q.rejected = nil
	return res
}

// Size is the count of live-plus-delayed payloads (rejected payloads, once
// evicted, no longer count toward queue size).
func (q *Queue) Size() int {
	return len(q.queue) + len(q.delayed)
}

// LiveLen reports the length of the live sub-queue, which Cursor needs to
// translate an index into "live" vs "delayed" without duplicating At's
// bounds logic.
func (q *Queue) LiveLen() int {
	return len(q.queue)
}

// DelayedLen reports the length of the delayed sub-queue.
func (q *Queue) DelayedLen() int {
	return len(q.delayed)
}

// Empty reports whether both the live and delayed sub-queues are empty.
func (q *Queue) Empty() bool {
	return len(q.queue) == 0 && len(q.delayed) == 0
}
