package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk YAML shape. It is intentionally flatter than
// Config (durations as milliseconds, map keys as strings) since YAML
// doesn't round-trip uint32 map keys or time.Duration cleanly.
type fileConfig struct {
	PriorityLevels     uint32                  `yaml:"priority_levels"`
	DefaultQueuePolicy filePolicy              `yaml:"default_queue_policy"`
	QueuePolicyMap     map[string]filePolicy   `yaml:"queue_policy_map"`
	MaxBatchSize       uint32                  `yaml:"max_batch_size"`
	PreferredBatchSize uint32                  `yaml:"preferred_batch_size"`
	MaxQueueDelayMs    uint32                  `yaml:"max_queue_delay_ms"`
	EnforceEqualShape  map[string]bool         `yaml:"enforce_equal_shape_tensors"`
}

type filePolicy struct {
	MaxQueueSize         uint32 `yaml:"max_queue_size"`
	DefaultTimeoutMs     uint32 `yaml:"default_timeout_ms"`
	AllowTimeoutOverride bool   `yaml:"allow_timeout_override"`
	TimeoutAction        string `yaml:"timeout_action"`
}

func (p filePolicy) toPolicyConfig() PolicyConfig {
	action := ActionReject
	if p.TimeoutAction == "DELAY" {
		action = ActionDelay
	}
	return PolicyConfig{
		MaxQueueSize:         p.MaxQueueSize,
		DefaultTimeoutMs:     p.DefaultTimeoutMs,
		AllowTimeoutOverride: p.AllowTimeoutOverride,
		TimeoutAction:        action,
	}
}

// LoadFile reads a YAML scheduler policy file into a Config. It is used
// only by the demo binary; the scheduler core never reads a file directly.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Config{
		PriorityLevels:           fc.PriorityLevels,
		DefaultQueuePolicy:       fc.DefaultQueuePolicy.toPolicyConfig(),
		MaxBatchSize:             fc.MaxBatchSize,
		PreferredBatchSize:       fc.PreferredBatchSize,
		MaxQueueDelay:            time.Duration(fc.MaxQueueDelayMs) * time.Millisecond,
		EnforceEqualShapeTensors: fc.EnforceEqualShape,
	}
	if len(fc.QueuePolicyMap) > 0 {
		cfg.QueuePolicyMap = make(map[uint32]PolicyConfig, len(fc.QueuePolicyMap))
		for k, v := range fc.QueuePolicyMap {
			var level uint32
			if _, err := fmt.Sscanf(k, "%d", &level); err != nil {
				return Config{}, fmt.Errorf("parse queue_policy_map key %q: %w", k, err)
			}
			cfg.QueuePolicyMap[level] = v.toPolicyConfig()
		}
	}
	return cfg, nil
}
