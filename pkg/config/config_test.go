package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/rulegraph/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
max_states = 4
steps = 20

[cache]
backend = "redis"
ttl = "1h30m"
redis_addr = "cache.internal:6379"

[store]
mongo_uri = "mongodb://localhost:27017"
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if cfg.MaxStates != 4 || cfg.Steps != 20 {
		t.Errorf("got max_states %d steps %d", cfg.MaxStates, cfg.Steps)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.CycleLimit != 1000 || cfg.Server.Addr != ":8080" || cfg.Server.MaxSweepRules != 1024 || cfg.Store.Database != "rulegraph" {
		t.Error("unset fields should keep their defaults")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"too few states", "max_states = 1", "MaxStates"},
		{"too many states", "max_states = 17", "MaxStates"},
		{"zero steps", "steps = 0", "Steps"},
		{"negative cycle limit", "cycle_limit = -1", "CycleLimit"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"", "Cache.Backend"},
		{"redis without address", "[cache]\nbackend = \"redis\"\nredis_addr = \"\"", "Cache.RedisAddr"},
		{"malformed redis address", "[cache]\nredis_addr = \"nohost\"", "Cache.RedisAddr"},
		{"empty database", "[store]\ndatabase = \"\"", "Store.Database"},
		{"sweep bound above pipeline limit", "[server]\nmax_sweep_rules = 70000", "Server.MaxSweepRules"},
		{"unknown key", "max_state = 3", "max_state"},
		{"bad syntax", "max_states = ", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.toml)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Parse error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("cycle_limit = 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.CycleLimit != 10 {
		t.Errorf("CycleLimit = %d, want 10", cfg.CycleLimit)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(explicit missing) error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.MaxStates != Default().MaxStates {
		t.Errorf("MaxStates = %d, want default", cfg.MaxStates)
	}
}
