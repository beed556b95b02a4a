// Package priorityqueue implements the ordered collection of per-level
// PolicyQueues plus the Cursor bookmark the BatchBuilder uses to form
// batches without re-scanning from the top on every tick.
package priorityqueue

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sheerbytes/batchsched/pkg/config"
	"github.com/sheerbytes/batchsched/pkg/payload"
	"github.com/sheerbytes/batchsched/pkg/policyqueue"
	"github.com/sheerbytes/batchsched/pkg/schederr"
)

// Queue is the priority-ordered collection of PolicyQueues for one model
// instance, plus the cursor describing the currently-forming batch.
//
// A single mutex protects all mutation of the PolicyQueues, the cursor, and
// size. Enqueue is self-locking, since producer threads call it
// independently of the scheduler thread. The cursor-driving methods
// (ApplyPolicyAtCursor, AdvanceCursor, ResetCursor, IsCursorValid, Dequeue,
// ReleaseRejectedPayloads) assume the caller already holds the lock via
// Lock/Unlock -- the BatchBuilder acquires it once per tick so that a
// PeekFunc invoked mid-tick is covered by the same critical section, per
// spec §5.
type Queue struct {
	mu sync.Mutex

	levels []uint32
	byLvl  map[uint32]*policyqueue.Queue

	size   int
	cursor cursor

	// notify wakes a scheduler thread blocked waiting for work. Buffered
	// to 1 so a burst of Enqueue calls doesn't block producers and a
	// pending signal is never lost between a scheduler's check and its
	// wait.
	notify chan struct{}
}

// New builds a PriorityQueue from cfg: a single implicit level 0 when
// cfg.PriorityLevels == 0, else levels 1..PriorityLevels, each governed by
// cfg.QueuePolicyMap's override or cfg.DefaultQueuePolicy.
func New(cfg config.Config) *Queue {
	levels := cfg.Levels()
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	q := &Queue{
		levels: levels,
		byLvl:  make(map[uint32]*policyqueue.Queue, len(levels)),
		notify: make(chan struct{}, 1),
	}
	for _, lvl := range levels {
		q.byLvl[lvl] = policyqueue.New(cfg.PolicyFor(lvl))
	}
	q.resetCursorLocked()
	return q
}

// Lock acquires the PriorityQueue's mutex for a caller that needs to drive
// multiple cursor operations (and possibly a PeekFunc) as one atomic tick.
func (q *Queue) Lock() { q.mu.Lock() }

// Unlock releases the mutex acquired by Lock.
func (q *Queue) Unlock() { q.mu.Unlock() }

// Enqueue delegates to the PolicyQueue for level, incrementing size on
// success. The cursor remains valid only if level is strictly greater than
// (strictly lower priority than) the cursor's current level: an insertion
// at or above the cursor's level might land ahead of already-claimed
// positions, but one strictly below cannot (see DESIGN.md for why the
// original's commented-out ">=" alternative was not adopted).
func (q *Queue) Enqueue(level uint32, p *payload.Payload, now uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pq, ok := q.byLvl[level]
	if !ok {
		return fmt.Errorf("priorityqueue: %w: unknown level %d", schederr.ErrInvalidArgument, level)
	}
	if err := pq.Enqueue(p, now); err != nil {
		return err
	}
	q.size++
	if q.cursor.valid && level <= q.cursor.level(q.levels) {
		q.cursor.valid = false
	}

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Notify returns the channel a waiting scheduler selects on to wake up
// when a new payload has been enqueued.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

// Dequeue invalidates the cursor and returns the front payload of the
// first nonempty level in ascending order. Returns ErrInvalidArgument if
// the whole priority queue is empty.
func (q *Queue) Dequeue() (*payload.Payload, error) {
	q.cursor.valid = false
	for _, lvl := range q.levels {
		pq := q.byLvl[lvl]
		if !pq.Empty() {
			p, err := pq.Dequeue()
			if err != nil {
				return nil, err
			}
			q.size--
			return p, nil
		}
	}
	return nil, fmt.Errorf("priorityqueue: %w: dequeue on empty queue", schederr.ErrInvalidArgument)
}

// Size returns the total live-plus-delayed payload count across all levels.
func (q *Queue) Size() int {
	return q.size
}

// ReleaseRejectedPayloads harvests each level's rejected sub-queue, in
// ascending level order.
func (q *Queue) ReleaseRejectedPayloads() [][]*payload.Payload {
	res := make([][]*payload.Payload, len(q.levels))
	for i, lvl := range q.levels {
		res[i] = q.byLvl[lvl].ReleaseRejectedQueue()
	}
	return res
}
