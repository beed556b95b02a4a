package main

import "math/rand"

// syntheticRequest is a minimal payload.Request used only by this demo to
// exercise the scheduler without a real model backend. Real callers
// implement payload.Request over their own tensor/input representation.
type syntheticRequest struct {
	inputs    []string
	shapes    map[string][]int64
	timeoutMs uint32
	batchSize uint32
}

func newSyntheticRequest(batchDim int64, timeoutMs uint32) *syntheticRequest {
	return &syntheticRequest{
		inputs:    []string{"x"},
		shapes:    map[string][]int64{"x": {batchDim, 4}},
		timeoutMs: timeoutMs,
		batchSize: 1,
	}
}

func (r *syntheticRequest) Inputs() []string { return r.inputs }

func (r *syntheticRequest) InputShape(name string) ([]int64, bool) {
	dims, ok := r.shapes[name]
	return dims, ok
}

func (r *syntheticRequest) TimeoutMs() uint32 { return r.timeoutMs }

func (r *syntheticRequest) BatchSize() uint32 { return r.batchSize }

// randShapeDim returns one of a small set of recurring "batch dimension"
// values, so synthetic requests naturally cluster into shape-compatible
// groups the way real traffic does.
func randShapeDim() int64 {
	dims := []int64{1, 4, 8}
	return dims[rand.Intn(len(dims))]
}
