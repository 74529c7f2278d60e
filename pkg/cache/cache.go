// Package cache stores derived ruleset data keyed by rule and state count.
//
// Analysis multiplies dense matrices of states^3 rows and enumerates cycles,
// and SVG output runs Graphviz. The pipeline keeps both in a [Cache] so
// repeated CLI runs and HTTP requests reuse them.
//
// Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: JSON entries under the user cache directory (CLI default)
//   - [BadgerCache]: embedded key-value store, persistent or in-memory
//   - [RedisCache]: shared cache for server deployments
//
// Keys come from a [Keyer]; [ScopedKeyer] namespaces them. Wrap a backend
// with [Observe] to report hits and misses to the observability hooks.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/rulegraph/pkg/observability"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Keyer generates cache keys.
type Keyer interface {
	// AnalysisKey identifies an analysis of a ruleset.
	AnalysisKey(rule, states int, opts AnalysisKeyOpts) string

	// ArtifactKey identifies a rendered output of a ruleset.
	ArtifactKey(rule, states int, opts ArtifactKeyOpts) string
}

// AnalysisKeyOpts holds the analysis parameters that change its result.
type AnalysisKeyOpts struct {
	Steps      int `json:"steps"`
	CycleLimit int `json:"cycle_limit"`
}

// ArtifactKeyOpts holds the render parameters that change an artifact.
type ArtifactKeyOpts struct {
	Format        string `json:"format"`
	Probabilities bool   `json:"probabilities,omitempty"`
	Glyphs        bool   `json:"glyphs,omitempty"`
}

// DefaultKeyer produces "<kind>:<states>:<rule>:<hash>" keys. The readable
// prefix lets operators find every entry of one ruleset.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AnalysisKey returns "analysis:<states>:<rule>:<hash(opts)>".
func (DefaultKeyer) AnalysisKey(rule, states int, opts AnalysisKeyOpts) string {
	return hashKey(fmt.Sprintf("analysis:%d:%d", states, rule), opts)
}

// ArtifactKey returns "artifact:<states>:<rule>:<hash(opts)>".
func (DefaultKeyer) ArtifactKey(rule, states int, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%d:%d", states, rule), opts)
}

// keyType returns the key's leading namespace for metrics labels, skipping
// any scope prefix.
func keyType(key string) string {
	for _, t := range []string{"analysis", "artifact"} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "other"
}

type observed struct {
	Cache
}

// Observe wraps c so that every lookup and store is reported to
// observability.Cache().
func Observe(c Cache) Cache {
	return &observed{Cache: c}
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// Clear forwards to the wrapped backend when it supports clearing.
func (o *observed) Clear(ctx context.Context) (int, error) {
	if c, ok := o.Cache.(Clearer); ok {
		return c.Clear(ctx)
	}
	return 0, nil
}
