package config

import (
	"flag"
	"os"
)

// DemoConfig holds the handful of runtime knobs cmd/batchsched-demo accepts.
// It mirrors the teacher's flag-then-env-then-default layering in
// internal/config/config.go.
type DemoConfig struct {
	ConfigPath string
	LogLevel   string
	Duration   string // parsed by the caller with time.ParseDuration
	Producers  int
}

// ParseDemoConfig parses demo configuration from flags and environment
// variables. Flags take precedence over environment variables.
func ParseDemoConfig() DemoConfig {
	return parseDemoConfigWithFlagSet(flag.CommandLine, os.Args[1:])
}

func parseDemoConfigWithFlagSet(fs *flag.FlagSet, args []string) DemoConfig {
	cfg := DemoConfig{
		ConfigPath: "policy.yaml",
		LogLevel:   "info",
		Duration:   "5s",
		Producers:  4,
	}

	if v := os.Getenv("BATCHSCHED_CONFIG"); v != "" {
		cfg.ConfigPath = v
	}
	if v := os.Getenv("BATCHSCHED_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BATCHSCHED_DURATION"); v != "" {
		cfg.Duration = v
	}

	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "path to the scheduler policy YAML file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Duration, "duration", cfg.Duration, "how long to run the demo for")
	fs.IntVar(&cfg.Producers, "producers", cfg.Producers, "number of synthetic producer goroutines")
	fs.Parse(args)

	return cfg
}
