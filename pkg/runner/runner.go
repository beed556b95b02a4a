// Package runner defines the downstream sink BatchBuilder hands sealed
// batches to. The scheduler core never executes inference itself -- that
// is the runner's job, entirely out of this module's scope.
package runner

import (
	"context"

	"github.com/sheerbytes/batchsched/pkg/payload"
)

// Batch is a sealed, ready-to-execute group of payloads.
type Batch struct {
	Payloads []*payload.Payload
}

// TotalBatchSize sums the BatchSize of every payload in the batch.
func (b *Batch) TotalBatchSize() uint32 {
	var total uint32
	for _, p := range b.Payloads {
		total += p.BatchSize
	}
	return total
}

// Runner is the collaborator interface a backend model executor implements.
type Runner interface {
	Enqueue(ctx context.Context, batch *Batch) error
}

// Func adapts a plain function to the Runner interface, mirroring the
// teacher's preference for capability-set function values over
// single-method interface boilerplate at call sites.
type Func func(ctx context.Context, batch *Batch) error

func (f Func) Enqueue(ctx context.Context, batch *Batch) error {
	return f(ctx, batch)
}
