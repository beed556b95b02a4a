// Package batchbuilder implements the orchestration loop that consumes
// from a PriorityQueue via its Cursor, applies shape compatibility,
// respects max-batch-size and max-queue-delay, and hands sealed batches to
// a Runner.
package batchbuilder

import (
	"context"
	"log/slog"
	"time"

	"github.com/sheerbytes/batchsched/pkg/clock"
	"github.com/sheerbytes/batchsched/pkg/config"
	"github.com/sheerbytes/batchsched/pkg/payload"
	"github.com/sheerbytes/batchsched/pkg/priorityqueue"
	"github.com/sheerbytes/batchsched/pkg/runner"
	"github.com/sheerbytes/batchsched/pkg/schederr"
	"github.com/sheerbytes/batchsched/pkg/shapecompat"
)

// Builder drives one PriorityQueue's cursor forward, forming and sealing
// batches according to cfg, under the PriorityQueue's own lock.
type Builder struct {
	pq       *priorityqueue.Queue
	cfg      config.Config
	clock    clock.Clock
	runnerID int64
	runner   runner.Runner
	peek     shapecompat.PeekFunc
	logger   *slog.Logger

	// per-forming-batch state, reset whenever the cursor is reset.
	pending          shapecompat.PendingShapes
	claimedBatchSize uint32
}

// Option configures optional Builder fields at construction.
type Option func(*Builder)

// WithLogger attaches a logger used for rejected-payload and error events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// New builds a Builder over pq, sealing batches into r via the given peek
// function for shape-tensor contents. runnerID is passed through to
// PeekFunc and ShapeCompatibility unchanged.
func New(pq *priorityqueue.Queue, cfg config.Config, clk clock.Clock, runnerID int64, r runner.Runner, peek shapecompat.PeekFunc, opts ...Option) *Builder {
	b := &Builder{
		pq:       pq,
		cfg:      cfg,
		clock:    clk,
		runnerID: runnerID,
		runner:   r,
		peek:     peek,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Tick runs one pass of the state machine in spec §4.5: it advances the
// cursor across expired and shape-compatible payloads, harvests anything
// the timeout policy rejected along the way, and either seals a batch
// (returning it) or leaves the cursor parked for next tick (returning a
// nil batch, nil error).
func (b *Builder) Tick(ctx context.Context) (*runner.Batch, error) {
	b.pq.Lock()
	defer b.pq.Unlock()

	now := b.clock.Now()

	if !b.pq.IsCursorValid(now) {
		b.pq.ResetCursor()
		b.pending = nil
		b.claimedBatchSize = 0
	}

	var tickErr error
	var rejectedBatchSize uint32

claimLoop:
	for {
		rejectedBatchSize += b.pq.ApplyPolicyAtCursor(now)

		cand, ok := b.pq.CursorCandidate()
		if !ok {
			break claimLoop
		}

		if b.pq.PendingBatchCount() == 0 {
			pending, err := shapecompat.InitPendingShape(b.runnerID, cand, b.cfg.EnforceEqualShapeTensors, b.peek)
			if err != nil {
				tickErr = err
				break claimLoop
			}
			b.pending = pending
			b.claimedBatchSize = cand.BatchSize
			b.pq.AdvanceCursor()
			continue claimLoop
		}

		if !shapecompat.CompareWithPendingShape(b.runnerID, cand, b.peek, b.pending) {
			break claimLoop
		}

		if b.cfg.MaxBatchSize > 0 && b.claimedBatchSize+cand.BatchSize > b.cfg.MaxBatchSize {
			break claimLoop
		}

		b.claimedBatchSize += cand.BatchSize
		b.pq.AdvanceCursor()
	}

	b.harvestRejectedLocked()

	if rejectedBatchSize > 0 && b.logger != nil {
		b.logger.Debug("rejected payloads on deadline this tick", "rejected_batch_size", rejectedBatchSize)
	}

	if tickErr != nil {
		return nil, tickErr
	}

	count := b.pq.PendingBatchCount()
	if count == 0 {
		return nil, nil
	}

	if b.shouldWaitLocked(now, count) {
		return nil, nil
	}

	return b.sealLocked()
}

// shouldWaitLocked implements spec §4.5 step 3. Caller must hold pq's lock.
func (b *Builder) shouldWaitLocked(now uint64, count int) bool {
	if uint32(count) >= b.cfg.PreferredBatchSize {
		return false
	}
	oldest := b.pq.PendingBatchOldestEnqueueTimeNs()
	if now-oldest >= uint64(b.cfg.MaxQueueDelay) {
		return false
	}
	return true
}

// sealLocked dequeues exactly the claimed count of payloads -- matching
// the cursor's claim order by construction, since Dequeue walks levels
// ascending and the cursor claimed in that same order -- and returns them
// as a sealed Batch. Caller must hold pq's lock.
func (b *Builder) sealLocked() (*runner.Batch, error) {
	count := b.pq.PendingBatchCount()
	payloads := make([]*payload.Payload, 0, count)
	for i := 0; i < count; i++ {
		p, err := b.pq.Dequeue()
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	b.pending = nil
	b.claimedBatchSize = 0
	return &runner.Batch{Payloads: payloads}, nil
}

// harvestRejectedLocked completes every payload the timeout policy
// rejected since the last harvest with ErrDeadlineExceeded. Caller must
// hold pq's lock.
func (b *Builder) harvestRejectedLocked() {
	for _, level := range b.pq.ReleaseRejectedPayloads() {
		for _, p := range level {
			p.Complete(payload.StatusDeadlineExceeded, schederr.ErrDeadlineExceeded)
			if b.logger != nil {
				b.logger.Debug("payload rejected on deadline", "payload_id", p.ID)
			}
			p.Release()
		}
	}
}

// Run drives Tick in a loop, handing sealed batches to the Runner and
// blocking between ticks on the PriorityQueue's enqueue notification or a
// timer bounded by the pending batch's closest timeout / max queue delay,
// whichever is sooner. It returns when ctx is canceled, after draining
// rejected payloads and abandoning any still-live payloads with
// ErrShuttingDown.
func (b *Builder) Run(ctx context.Context) error {
	defer b.drainOnShutdown()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch, err := b.Tick(ctx)
		if err != nil && b.logger != nil {
			b.logger.Error("batchbuilder: tick failed", "error", err)
		}

		if batch != nil {
			if err := b.runner.Enqueue(ctx, batch); err != nil && b.logger != nil {
				b.logger.Error("batchbuilder: runner enqueue failed", "error", err, "batch_size", len(batch.Payloads))
			}
			continue
		}

		if err := b.wait(ctx); err != nil {
			return err
		}
	}
}

// wait blocks until there's a reason to tick again: a new enqueue, the
// pending batch's closest deadline, the max-queue-delay deadline for its
// oldest member, or context cancellation.
func (b *Builder) wait(ctx context.Context) error {
	b.pq.Lock()
	closest := b.pq.PendingBatchClosestTimeoutNs()
	oldest := b.pq.PendingBatchOldestEnqueueTimeNs()
	count := b.pq.PendingBatchCount()
	b.pq.Unlock()

	now := b.clock.Now()
	haveDeadline := false
	var deadlineNs uint64

	if closest != 0 {
		deadlineNs, haveDeadline = closest, true
	}
	if count > 0 && b.cfg.MaxQueueDelay > 0 {
		d := oldest + uint64(b.cfg.MaxQueueDelay)
		if !haveDeadline || d < deadlineNs {
			deadlineNs, haveDeadline = d, true
		}
	}

	if !haveDeadline {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.pq.Notify():
			return nil
		}
	}

	wait := time.Duration(0)
	if deadlineNs > now {
		wait = time.Duration(deadlineNs - now)
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.pq.Notify():
		return nil
	case <-timer.C:
		return nil
	}
}

// drainOnShutdown harvests any rejected payloads and abandons every
// remaining live/delayed payload with ErrShuttingDown.
func (b *Builder) drainOnShutdown() {
	b.pq.Lock()
	defer b.pq.Unlock()

	b.harvestRejectedLocked()
	for {
		p, err := b.pq.Dequeue()
		if err != nil {
			return
		}
		p.Complete(payload.StatusShuttingDown, schederr.ErrShuttingDown)
		p.Release()
	}
}
