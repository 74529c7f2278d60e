// Package config loads the rulegraph configuration file.
//
// Configuration is a TOML file, by default
// $XDG_CONFIG_HOME/rulegraph/config.toml. Every field has a default, so a
// missing default file is not an error and an empty file is valid:
//
//	max_states = 6
//	steps = 51
//	cycle_limit = 1000
//
//	[cache]
//	backend = "file"   # null | file | badger | redis
//	ttl = "168h"
//
//	[store]
//	mongo_uri = ""     # empty keeps sweeps in memory
//
//	[server]
//	addr = ":8080"
//	max_sweep_rules = 1024
//
// Values are checked with go-playground/validator struct tags after
// decoding; failures carry the INVALID_CONFIG code.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/rulegraph/pkg/errors"
)

// Cache backends.
const (
	BackendNull   = "null"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Config is the top-level configuration.
type Config struct {
	// MaxStates bounds the state count accepted from the CLI and HTTP API.
	// Construction cost grows with states^6.
	MaxStates int `toml:"max_states" validate:"min=2,max=16"`

	// Steps is the matrix power inspected by classification.
	Steps int `toml:"steps" validate:"min=1,max=10000"`

	// CycleLimit caps cycle enumeration. Zero means unlimited.
	CycleLimit int `toml:"cycle_limit" validate:"gte=0"`

	// Concurrency bounds parallel classification in sweeps. Zero means one
	// worker per CPU.
	Concurrency int `toml:"concurrency" validate:"gte=0,lte=1024"`

	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the ruleset cache.
type CacheConfig struct {
	Backend    string        `toml:"backend" validate:"oneof=null file badger redis"`
	TTL        time.Duration `toml:"ttl" validate:"gte=0"`
	Dir        string        `toml:"dir"`
	BadgerPath string        `toml:"badger_path"`
	RedisAddr  string        `toml:"redis_addr" validate:"required_if=Backend redis,omitempty,hostname_port"`
	RedisDB    int           `toml:"redis_db" validate:"gte=0,lte=15"`
}

// StoreConfig configures where sweep results are kept.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri" validate:"omitempty,uri"`
	Database string `toml:"database" validate:"required"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`

	// MaxSweepRules bounds the rule range of a sweep requested over HTTP.
	// Sweeps run inside the request, so this is lower than the CLI bound.
	MaxSweepRules int `toml:"max_sweep_rules" validate:"min=1,max=65536"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MaxStates:  6,
		Steps:      51,
		CycleLimit: 1000,
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       7 * 24 * time.Hour,
			RedisAddr: "localhost:6379",
		},
		Store: StoreConfig{
			Database: "rulegraph",
		},
		Server: ServerConfig{
			Addr:          ":8080",
			MaxSweepRules: 1024,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rulegraph", "config.toml"), nil
}

// Load reads the configuration at path on top of the defaults. An empty
// path loads [DefaultPath], where a missing file yields the defaults. An
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return Parse(string(data))
}

// Parse decodes TOML text on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(fe)
	}
	return errors.New(errors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s fails %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s fails %s (got %v)", field, fe.Tag(), fe.Value())
}
