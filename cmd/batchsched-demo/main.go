// Command batchsched-demo wires a PriorityQueue and BatchBuilder together
// with synthetic producers and a logging mock runner, to exercise the
// scheduler core end to end without a real model backend.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/sheerbytes/batchsched/internal/logging"
	"github.com/sheerbytes/batchsched/pkg/batchbuilder"
	"github.com/sheerbytes/batchsched/pkg/clock"
	"github.com/sheerbytes/batchsched/pkg/config"
	"github.com/sheerbytes/batchsched/pkg/payload"
	"github.com/sheerbytes/batchsched/pkg/priorityqueue"
	"github.com/sheerbytes/batchsched/pkg/runner"
)

func main() {
	demoCfg := config.ParseDemoConfig()
	logger := logging.New("batchsched-demo", demoCfg.LogLevel)

	cfg, err := config.LoadFile(demoCfg.ConfigPath)
	if err != nil {
		logger.Warn("failed to load policy config, using built-in defaults", "path", demoCfg.ConfigPath, "error", err)
		cfg = defaultDemoConfig()
	}

	duration, err := time.ParseDuration(demoCfg.Duration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -duration: %v\n", err)
		os.Exit(1)
	}

	clk := clock.New()
	pq := priorityqueue.New(cfg)

	var sealedBatches, sealedPayloads, rejected int64
	r := runner.Func(func(_ context.Context, batch *runner.Batch) error {
		atomic.AddInt64(&sealedBatches, 1)
		atomic.AddInt64(&sealedPayloads, int64(len(batch.Payloads)))
		for _, p := range batch.Payloads {
			p.Complete(payload.StatusDequeued, nil)
			p.Release()
		}
		logger.Info("batch sealed", "count", len(batch.Payloads), "total_batch_size", batch.TotalBatchSize())
		return nil
	})

	peek := func(_ int64, _ string, _ *payload.Payload) ([]int64, error) {
		// No real shape tensors in this demo; declared-shape comparison
		// alone drives batch formation.
		return nil, nil
	}

	builder := batchbuilder.New(pq, cfg, clk, 0, r, peek, batchbuilder.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	for i := 0; i < demoCfg.Producers; i++ {
		go runProducer(ctx, pq, clk, cfg, &rejected)
	}

	if err := builder.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("batchbuilder run exited unexpectedly", "error", err)
	}

	fmt.Printf("sealed_batches=%d sealed_payloads=%d rejected=%d\n", sealedBatches, sealedPayloads, rejected)
}

func runProducer(ctx context.Context, pq *priorityqueue.Queue, clk clock.Clock, cfg config.Config, rejected *int64) {
	levels := cfg.Levels()
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(5+rand.Intn(10)) * time.Millisecond):
		}

		level := levels[rand.Intn(len(levels))]
		req := newSyntheticRequest(randShapeDim(), 0)
		now := clk.Now()
		p := payload.New(req, 0, now, func(status payload.CompletionStatus, err error) {
			if status == payload.StatusDeadlineExceeded {
				atomic.AddInt64(rejected, 1)
			}
		})

		if err := pq.Enqueue(level, p, now); err != nil {
			atomic.AddInt64(rejected, 1)
		}
	}
}

func defaultDemoConfig() config.Config {
	return config.Config{
		PriorityLevels: 2,
		DefaultQueuePolicy: config.PolicyConfig{
			MaxQueueSize:         64,
			DefaultTimeoutMs:     500,
			AllowTimeoutOverride: true,
			TimeoutAction:        config.ActionReject,
		},
		MaxBatchSize:       8,
		PreferredBatchSize: 4,
		MaxQueueDelay:      20 * time.Millisecond,
		EnforceEqualShapeTensors: map[string]bool{
			"x": false,
		},
	}
}
