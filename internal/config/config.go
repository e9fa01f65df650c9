// Package config holds the process-wide supervisor configuration,
// fixed at startup.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	EnvWorkerBin  = "AGENTPOOL_WORKER_BIN"
	EnvMaxRunning = "AGENTPOOL_MAX_RUNNING"
	EnvGrace      = "AGENTPOOL_GRACE"
)

const (
	DefaultWorkerBin  = "claude"
	DefaultMaxRunning = 5
	DefaultGrace      = 5 * time.Second
)

type Config struct {
	// WorkerBin is the agent worker binary launched per task.
	WorkerBin string
	// MaxRunning is the admission ceiling on simultaneously running tasks.
	MaxRunning int
	// Grace is the delay between the graceful and forced termination
	// signals on cancel.
	Grace time.Duration
}

func Default() Config {
	return Config{
		WorkerBin:  DefaultWorkerBin,
		MaxRunning: DefaultMaxRunning,
		Grace:      DefaultGrace,
	}
}

// FromEnv resolves configuration from the environment on top of the
// defaults. Unparseable or out-of-range values keep their defaults.
func FromEnv(getenv func(string) string) Config {
	cfg := Default()
	if v := strings.TrimSpace(getenv(EnvWorkerBin)); v != "" {
		cfg.WorkerBin = v
	}
	if v := strings.TrimSpace(getenv(EnvMaxRunning)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxRunning = n
		}
	}
	if v := strings.TrimSpace(getenv(EnvGrace)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Grace = d
		}
	}
	return cfg
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.WorkerBin) == "" {
		return fmt.Errorf("worker binary is required")
	}
	if c.MaxRunning <= 0 {
		return fmt.Errorf("max running must be > 0")
	}
	if c.Grace <= 0 {
		return fmt.Errorf("grace period must be > 0")
	}
	return nil
}
