package config

import (
	"testing"
	"time"
)

func getenvFrom(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Parallel()

	cfg := FromEnv(getenvFrom(nil))
	if cfg.WorkerBin != DefaultWorkerBin {
		t.Fatalf("worker bin = %q, want %q", cfg.WorkerBin, DefaultWorkerBin)
	}
	if cfg.MaxRunning != DefaultMaxRunning {
		t.Fatalf("max running = %d, want %d", cfg.MaxRunning, DefaultMaxRunning)
	}
	if cfg.Grace != DefaultGrace {
		t.Fatalf("grace = %v, want %v", cfg.Grace, DefaultGrace)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Parallel()

	cfg := FromEnv(getenvFrom(map[string]string{
		EnvWorkerBin:  " /opt/bin/agent ",
		EnvMaxRunning: "12",
		EnvGrace:      "250ms",
	}))
	if cfg.WorkerBin != "/opt/bin/agent" {
		t.Fatalf("worker bin = %q", cfg.WorkerBin)
	}
	if cfg.MaxRunning != 12 {
		t.Fatalf("max running = %d", cfg.MaxRunning)
	}
	if cfg.Grace != 250*time.Millisecond {
		t.Fatalf("grace = %v", cfg.Grace)
	}
}

func TestFromEnv_BadValuesKeepDefaults(t *testing.T) {
	t.Parallel()

	cfg := FromEnv(getenvFrom(map[string]string{
		EnvMaxRunning: "zero",
		EnvGrace:      "-3s",
	}))
	if cfg.MaxRunning != DefaultMaxRunning {
		t.Fatalf("max running = %d, want default", cfg.MaxRunning)
	}
	if cfg.Grace != DefaultGrace {
		t.Fatalf("grace = %v, want default", cfg.Grace)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty bin", func(c *Config) { c.WorkerBin = "  " }, true},
		{"zero ceiling", func(c *Config) { c.MaxRunning = 0 }, true},
		{"zero grace", func(c *Config) { c.Grace = 0 }, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
