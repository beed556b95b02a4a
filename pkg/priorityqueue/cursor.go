package priorityqueue

import "github.com/sheerbytes/batchsched/pkg/payload"

// cursor is the scheduler's bookmark into the level/queue-index space
// describing the currently-forming pending batch. All methods below
// assume the owning Queue's mutex is already held.
type cursor struct {
	levelIdx int // index into Queue.levels
	queueIdx int // offset within that level's PolicyQueue (live ++ delayed)

	pendingBatchCount               int
	pendingBatchClosestTimeoutNs    uint64
	pendingBatchOldestEnqueueTimeNs uint64

	valid bool
}

// level returns the priority level the cursor currently points at.
func (c *cursor) level(levels []uint32) uint32 {
	return levels[c.levelIdx]
}

func (q *Queue) resetCursorLocked() {
	q.cursor = cursor{valid: true}
}

// ResetCursor reinitializes the cursor to the first level, index 0, with
// cleared pending-batch counters. Caller must hold the lock.
func (q *Queue) ResetCursor() {
	q.resetCursorLocked()
}

// IsCursorValid reports whether the cursor still reflects the current
// queue contents and none of its claimed payloads has expired: valid is
// false after any disqualifying Enqueue or Dequeue, and additionally the
// cursor is treated as invalid once now reaches its closest claimed
// deadline, so a cached pending batch is never reused past a member's
// expiry. Caller must hold the lock.
func (q *Queue) IsCursorValid(now uint64) bool {
	if !q.cursor.valid {
		return false
	}
	if q.cursor.pendingBatchClosestTimeoutNs != 0 && now >= q.cursor.pendingBatchClosestTimeoutNs {
		return false
	}
	return true
}

// ApplyPolicyAtCursor drives the cursor forward across empty or expired
// payloads, applying each level's timeout policy in turn. It returns the
// summed BatchSize of payloads rejected during the scan. On completion the
// cursor points at either a valid batch candidate, or -- when no unclaimed
// payload remains -- a position at its current level with no payload, so
// CursorCandidate reports false.
func (q *Queue) ApplyPolicyAtCursor(now uint64) uint32 {
	var totalRejectedCount int
	var totalRejectedBatchSize uint32

	for q.cursor.levelIdx < len(q.levels) {
		pq := q.byLvl[q.levels[q.cursor.levelIdx]]
		ok, rejectedCount, rejectedBatchSize := pq.ApplyPolicy(q.cursor.queueIdx, now)
		totalRejectedCount += rejectedCount
		totalRejectedBatchSize += rejectedBatchSize

		if !ok && q.size > q.cursor.pendingBatchCount+totalRejectedCount {
			q.cursor.levelIdx++
			q.cursor.queueIdx = 0
			continue
		}
		break
	}

	q.size -= totalRejectedCount
	return totalRejectedBatchSize
}

// AdvanceCursor claims the payload currently under the cursor into the
// pending batch, folding its deadline and enqueue time into the cursor's
// running minimums, then moves the cursor to the next index within the
// same level. No-op once pendingBatchCount reaches Size().
func (q *Queue) AdvanceCursor() {
	if q.cursor.pendingBatchCount >= q.size {
		return
	}

	pq := q.byLvl[q.levels[q.cursor.levelIdx]]

	if deadline := pq.TimeoutAt(q.cursor.queueIdx); deadline != 0 {
		if q.cursor.pendingBatchClosestTimeoutNs == 0 || deadline < q.cursor.pendingBatchClosestTimeoutNs {
			q.cursor.pendingBatchClosestTimeoutNs = deadline
		}
	}

	if p, ok := pq.At(q.cursor.queueIdx); ok {
		qs := p.QueueStart
		if qs != 0 {
			if q.cursor.pendingBatchOldestEnqueueTimeNs == 0 || qs < q.cursor.pendingBatchOldestEnqueueTimeNs {
				q.cursor.pendingBatchOldestEnqueueTimeNs = qs
			}
		}
	}

	q.cursor.queueIdx++
	q.cursor.pendingBatchCount++
}

// CursorCandidate returns the payload currently under the cursor, if any.
// Valid only immediately after a successful ApplyPolicyAtCursor call.
func (q *Queue) CursorCandidate() (*payload.Payload, bool) {
	if q.cursor.levelIdx >= len(q.levels) {
		return nil, false
	}
	pq := q.byLvl[q.levels[q.cursor.levelIdx]]
	return pq.At(q.cursor.queueIdx)
}

// PendingBatchCount is the number of payloads already claimed by the
// forming batch.
func (q *Queue) PendingBatchCount() int {
	return q.cursor.pendingBatchCount
}

// PendingBatchClosestTimeoutNs is the minimum nonzero deadline among
// claimed payloads, or 0 if none has a deadline.
func (q *Queue) PendingBatchClosestTimeoutNs() uint64 {
	return q.cursor.pendingBatchClosestTimeoutNs
}

// PendingBatchOldestEnqueueTimeNs is the minimum QueueStart among claimed
// payloads, or 0 if none has been claimed yet.
func (q *Queue) PendingBatchOldestEnqueueTimeNs() uint64 {
	return q.cursor.pendingBatchOldestEnqueueTimeNs
}
