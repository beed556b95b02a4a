// Package config holds the structured configuration the scheduler core is
// instantiated with. The core itself never parses flags, environment
// variables, or files -- per the spec, configuration arrives as an
// already-structured input. File/flag/env parsing lives one layer up, in
// the demo binary (cmd/batchsched-demo), following the same
// flag-then-env-then-default layering the teacher uses in
// internal/config/config.go.
package config

import "time"

// TimeoutAction selects what happens to a Payload whose deadline elapses.
type TimeoutAction int

const (
	// ActionReject moves an expired payload to the rejected queue, where
	// it is harvested and completed with ErrDeadlineExceeded.
	ActionReject TimeoutAction = iota
	// ActionDelay moves an expired payload to the delayed queue, where it
	// remains eligible for batching but is no longer subject to timeout.
	ActionDelay
)

func (a TimeoutAction) String() string {
	switch a {
	case ActionDelay:
		return "DELAY"
	default:
		return "REJECT"
	}
}

// PolicyConfig configures one priority level's PolicyQueue.
type PolicyConfig struct {
	// MaxQueueSize caps the live queue; 0 means unbounded.
	MaxQueueSize uint32
	// DefaultTimeoutMs is the deadline applied unless AllowTimeoutOverride
	// lets a smaller nonzero per-request override win. 0 means no deadline.
	DefaultTimeoutMs uint32
	// AllowTimeoutOverride lets a request's own nonzero, smaller timeout
	// replace DefaultTimeoutMs.
	AllowTimeoutOverride bool
	// TimeoutAction selects REJECT or DELAY handling for expired payloads.
	TimeoutAction TimeoutAction
}

// Config is the full scheduler instantiation configuration (spec §6).
type Config struct {
	// PriorityLevels is the number of priority levels; 0 means a single
	// unprioritized level (level 0).
	PriorityLevels uint32
	// DefaultQueuePolicy applies to any level without an override in
	// QueuePolicyMap.
	DefaultQueuePolicy PolicyConfig
	// QueuePolicyMap overrides DefaultQueuePolicy for specific levels.
	QueuePolicyMap map[uint32]PolicyConfig

	// MaxBatchSize is the hard cap on claimed BatchSize units per batch.
	MaxBatchSize uint32
	// PreferredBatchSize is the target at which MaxQueueDelay no longer
	// blocks sealing.
	PreferredBatchSize uint32
	// MaxQueueDelay caps how long the oldest claimed payload may wait
	// once a preferred-size batch has not yet formed.
	MaxQueueDelay time.Duration

	// EnforceEqualShapeTensors maps input name to whether that input is a
	// shape tensor (true) whose contents, not just shape, must match
	// across a batch.
	EnforceEqualShapeTensors map[string]bool
}

// PolicyFor resolves the effective PolicyConfig for a priority level.
func (c Config) PolicyFor(level uint32) PolicyConfig {
	if c.QueuePolicyMap != nil {
		if p, ok := c.QueuePolicyMap[level]; ok {
			return p
		}
	}
	return c.DefaultQueuePolicy
}

// Levels returns the ordered set of priority levels this config implies:
// a single level 0 when PriorityLevels is 0, else 1..PriorityLevels.
func (c Config) Levels() []uint32 {
	if c.PriorityLevels == 0 {
		return []uint32{0}
	}
	levels := make([]uint32, c.PriorityLevels)
	for i := range levels {
		levels[i] = uint32(i + 1)
	}
	return levels
}
