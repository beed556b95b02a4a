// Package schederr defines the sentinel error kinds shared across the
// scheduler core, following the teacher's convention of package-level
// var Err... = errors.New(...) sentinels wrapped with %w at call sites.
package schederr

import "errors"

var (
	// ErrUnavailable is returned by PolicyQueue.Enqueue when the queue is
	// at max_queue_size. Callers should retry or drop the request.
	ErrUnavailable = errors.New("batchsched: queue at capacity")

	// ErrDeadlineExceeded is surfaced to a Payload's completion callback
	// when its deadline elapsed under the REJECT timeout action.
	ErrDeadlineExceeded = errors.New("batchsched: deadline exceeded")

	// ErrInternal reports a PeekFunc failure encountered while initializing
	// pending-batch shape state (the PeekFunc's own error is not wrapped).
	// The offending payload is not claimed.
	ErrInternal = errors.New("batchsched: internal error")

	// ErrInvalidArgument indicates a programmer error such as Dequeue on
	// an empty queue.
	ErrInvalidArgument = errors.New("batchsched: invalid argument")

	// ErrShuttingDown is surfaced to in-flight payloads abandoned during
	// cooperative scheduler shutdown.
	ErrShuttingDown = errors.New("batchsched: shutting down")
)
