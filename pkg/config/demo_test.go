package config

import (
	"flag"
	"os"
	"testing"
)

func TestParseDemoConfig_Defaults(t *testing.T) {
	os.Clearenv()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := parseDemoConfigWithFlagSet(fs, []string{})

	if cfg.ConfigPath != "policy.yaml" {
		t.Errorf("expected default ConfigPath policy.yaml, got %s", cfg.ConfigPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel info, got %s", cfg.LogLevel)
	}
	if cfg.Duration != "5s" {
		t.Errorf("expected default Duration 5s, got %s", cfg.Duration)
	}
	if cfg.Producers != 4 {
		t.Errorf("expected default Producers 4, got %d", cfg.Producers)
	}
}

func TestParseDemoConfig_Flags(t *testing.T) {
	os.Clearenv()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := parseDemoConfigWithFlagSet(fs, []string{"-config", "other.yaml", "-log-level", "debug", "-duration", "30s", "-producers", "8"})

	if cfg.ConfigPath != "other.yaml" {
		t.Errorf("expected ConfigPath other.yaml, got %s", cfg.ConfigPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel debug, got %s", cfg.LogLevel)
	}
	if cfg.Duration != "30s" {
		t.Errorf("expected Duration 30s, got %s", cfg.Duration)
	}
	if cfg.Producers != 8 {
		t.Errorf("expected Producers 8, got %d", cfg.Producers)
	}
}

func TestParseDemoConfig_EnvFallback(t *testing.T) {
	os.Clearenv()
	os.Setenv("BATCHSCHED_CONFIG", "env.yaml")
	os.Setenv("BATCHSCHED_LOG_LEVEL", "warn")
	os.Setenv("BATCHSCHED_DURATION", "1m")
	defer os.Unsetenv("BATCHSCHED_CONFIG")
	defer os.Unsetenv("BATCHSCHED_LOG_LEVEL")
	defer os.Unsetenv("BATCHSCHED_DURATION")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := parseDemoConfigWithFlagSet(fs, []string{})

	if cfg.ConfigPath != "env.yaml" {
		t.Errorf("expected ConfigPath env.yaml, got %s", cfg.ConfigPath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected LogLevel warn, got %s", cfg.LogLevel)
	}
	if cfg.Duration != "1m" {
		t.Errorf("expected Duration 1m, got %s", cfg.Duration)
	}
}

func TestParseDemoConfig_FlagsOverrideEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("BATCHSCHED_CONFIG", "env.yaml")
	defer os.Unsetenv("BATCHSCHED_CONFIG")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := parseDemoConfigWithFlagSet(fs, []string{"-config", "flag.yaml"})

	if cfg.ConfigPath != "flag.yaml" {
		t.Errorf("expected ConfigPath flag.yaml (from flag), got %s", cfg.ConfigPath)
	}
}
