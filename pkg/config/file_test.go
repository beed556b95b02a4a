package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_ParsesFlatShape(t *testing.T) {
	path := writeTempConfig(t, `
priority_levels: 2
default_queue_policy:
  max_queue_size: 64
  default_timeout_ms: 500
  allow_timeout_override: true
  timeout_action: REJECT
max_batch_size: 8
preferred_batch_size: 4
max_queue_delay_ms: 20
enforce_equal_shape_tensors:
  x: false
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Equal(t, uint32(2), cfg.PriorityLevels)
	require.Equal(t, uint32(64), cfg.DefaultQueuePolicy.MaxQueueSize)
	require.Equal(t, uint32(500), cfg.DefaultQueuePolicy.DefaultTimeoutMs)
	require.True(t, cfg.DefaultQueuePolicy.AllowTimeoutOverride)
	require.Equal(t, ActionReject, cfg.DefaultQueuePolicy.TimeoutAction)
	require.Equal(t, uint32(8), cfg.MaxBatchSize)
	require.Equal(t, uint32(4), cfg.PreferredBatchSize)
	require.Equal(t, 20*time.Millisecond, cfg.MaxQueueDelay)
	require.False(t, cfg.EnforceEqualShapeTensors["x"])
}

func TestLoadFile_ParsesQueuePolicyMapKeys(t *testing.T) {
	path := writeTempConfig(t, `
priority_levels: 2
queue_policy_map:
  "1":
    max_queue_size: 16
    timeout_action: DELAY
  "2":
    max_queue_size: 128
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.QueuePolicyMap, 2)
	require.Equal(t, uint32(16), cfg.QueuePolicyMap[1].MaxQueueSize)
	require.Equal(t, ActionDelay, cfg.QueuePolicyMap[1].TimeoutAction)
	require.Equal(t, uint32(128), cfg.QueuePolicyMap[2].MaxQueueSize)
}

func TestLoadFile_MissingFileReturnsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadFile_MalformedYAMLReturnsError(t *testing.T) {
	path := writeTempConfig(t, "not: [valid: yaml")
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_BadQueuePolicyMapKeyReturnsError(t *testing.T) {
	path := writeTempConfig(t, `
queue_policy_map:
  "not-a-number":
    max_queue_size: 16
`)
	_, err := LoadFile(path)
	require.Error(t, err)
}
