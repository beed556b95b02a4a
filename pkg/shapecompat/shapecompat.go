// Package shapecompat implements the stateless predicate BatchBuilder uses
// to decide whether a new request may join the currently forming batch.
package shapecompat

import (
	"fmt"

	"github.com/sheerbytes/batchsched/pkg/payload"
	"github.com/sheerbytes/batchsched/pkg/schederr"
)

// PeekFunc is supplied by the runner to materialize a shape-tensor's
// contents without consuming the payload. runnerID identifies which
// downstream runner instance is forming the batch.
type PeekFunc func(runnerID int64, inputName string, p *payload.Payload) ([]int64, error)

// shapePair is the declared dimensions plus, for shape tensors, the
// peeked contents.
type shapePair struct {
	dims     []int64
	contents []int64 // empty unless the input is a shape tensor
}

// PendingShapes records, per enforced input name, the shape (and for
// shape tensors, contents) that every subsequent candidate in the forming
// batch must match.
type PendingShapes map[string]shapePair

// InitPendingShape records the declared shape of every input of p whose
// name is a key in enforce, and, for inputs flagged true (shape tensors),
// the peeked contents of that input. A PeekFunc failure is surfaced to the
// caller as a wrapped ErrInternal -- the payload must not be claimed.
func InitPendingShape(runnerID int64, p *payload.Payload, enforce map[string]bool, peek PeekFunc) (PendingShapes, error) {
	pending := make(PendingShapes)

	for _, name := range p.Request.Inputs() {
		isShapeTensor, tracked := enforce[name]
		if !tracked {
			continue
		}

		dims, ok := p.Request.InputShape(name)
		if !ok {
			continue
		}
		pair := shapePair{dims: dims}

		if isShapeTensor {
			contents, err := peek(runnerID, name, p)
			if err != nil {
				return nil, fmt.Errorf("shapecompat: peek %q: %w", name, schederr.ErrInternal)
			}
			pair.contents = contents
		}

		pending[name] = pair
	}

	return pending, nil
}

// CompareWithPendingShape reports whether p is compatible with the
// batch-in-progress described by pending: every input of p that appears in
// pending must have identical declared dimensions, and, for shape tensors
// (nonempty recorded contents), identical peeked contents. A PeekFunc
// failure here is contained: it conservatively returns false (mismatch)
// rather than propagating an error, since shape comparison happens on the
// hot path and an errored comparison should simply stop the batch, not
// abort the tick.
func CompareWithPendingShape(runnerID int64, p *payload.Payload, peek PeekFunc, pending PendingShapes) bool {
	for _, name := range p.Request.Inputs() {
		pair, tracked := pending[name]
		if !tracked {
			continue
		}

		dims, ok := p.Request.InputShape(name)
		if !ok || !equalDims(pair.dims, dims) {
			return false
		}

		if len(pair.contents) > 0 {
			contents, err := peek(runnerID, name, p)
			if err != nil {
				return false
			}
			if !equalDims(pair.contents, contents) {
				return false
			}
		}
	}
	return true
}

// equalDims is a strict, dimension-by-dimension equality check: no
// broadcasting, no wildcard collapse.
func equalDims(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
