package payload

import (
	"errors"
	"testing"
)

type stubRequest struct {
	inputs    []string
	shapes    map[string][]int64
	timeoutMs uint32
	batchSize uint32
}

func (r *stubRequest) Inputs() []string { return r.inputs }
func (r *stubRequest) InputShape(name string) ([]int64, bool) {
	d, ok := r.shapes[name]
	return d, ok
}
func (r *stubRequest) TimeoutMs() uint32 { return r.timeoutMs }
func (r *stubRequest) BatchSize() uint32 { return r.batchSize }

func TestNew_DefaultsBatchSizeToOne(t *testing.T) {
	req := &stubRequest{}
	p := New(req, 100, 1000, nil)

	if p.BatchSize != 1 {
		t.Errorf("expected default BatchSize 1, got %d", p.BatchSize)
	}
	if p.QueueStart != 1000 {
		t.Errorf("expected QueueStart 1000, got %d", p.QueueStart)
	}
	if p.ID == "" {
		t.Error("expected a non-empty correlation ID")
	}
	if p.Stats == nil || p.Stats.QueueStartNs != 1000 {
		t.Errorf("expected Stats.QueueStartNs to be stamped, got %+v", p.Stats)
	}
}

func TestNew_PreservesExplicitBatchSize(t *testing.T) {
	req := &stubRequest{batchSize: 3}
	p := New(req, 0, 0, nil)

	if p.BatchSize != 3 {
		t.Errorf("expected BatchSize 3, got %d", p.BatchSize)
	}
}

func TestComplete_InvokesCallbackOnce(t *testing.T) {
	var gotStatus CompletionStatus
	var gotErr error
	calls := 0

	p := New(&stubRequest{}, 0, 0, func(status CompletionStatus, err error) {
		calls++
		gotStatus = status
		gotErr = err
	})

	sentinel := errors.New("deadline")
	p.Complete(StatusDeadlineExceeded, sentinel)

	if calls != 1 {
		t.Fatalf("expected exactly one callback invocation, got %d", calls)
	}
	if gotStatus != StatusDeadlineExceeded {
		t.Errorf("expected StatusDeadlineExceeded, got %v", gotStatus)
	}
	if gotErr != sentinel {
		t.Errorf("expected sentinel error to propagate, got %v", gotErr)
	}
}

func TestComplete_NilCallbackIsSafe(t *testing.T) {
	p := New(&stubRequest{}, 0, 0, nil)
	p.Complete(StatusShuttingDown, nil) // must not panic
}

func TestRelease_ClearsStatsAndIsIdempotent(t *testing.T) {
	p := New(&stubRequest{}, 0, 42, nil)

	p.Release()
	if p.Stats != nil {
		t.Error("expected Stats to be nil after Release")
	}

	p.Release() // second call must be a no-op, not a panic
}

func TestRelease_RecycledStatsAreReset(t *testing.T) {
	p1 := New(&stubRequest{}, 0, 999, nil)
	p1.Stats.QueueEndNs = 12345
	p1.Release()

	// Enough churn through the pool that a reused Stats handle would
	// surface stale data if reset were broken.
	for i := 0; i < 8; i++ {
		p := New(&stubRequest{}, 0, uint64(i), nil)
		if p.Stats.QueueEndNs != 0 {
			t.Errorf("expected recycled Stats to have zeroed QueueEndNs, got %d", p.Stats.QueueEndNs)
		}
		p.Release()
	}
}

