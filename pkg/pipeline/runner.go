package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rulegraph/pkg/cache"
	"github.com/matzehuels/rulegraph/pkg/errors"
	rgio "github.com/matzehuels/rulegraph/pkg/io"
	"github.com/matzehuels/rulegraph/pkg/markov"
	"github.com/matzehuels/rulegraph/pkg/observability"
	"github.com/matzehuels/rulegraph/pkg/render/nodelink"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Build validates the state count against opts.MaxStates and constructs
// the ruleset.
func (r *Runner) Build(ctx context.Context, rule, states int, opts Options) (*ruleset.Ruleset, error) {
	opts.SetDefaults()
	if err := errors.ValidateStates(states, opts.MaxStates); err != nil {
		return nil, err
	}
	if err := errors.ValidateRule(rule); err != nil {
		return nil, err
	}

	start := time.Now()
	rs, err := ruleset.Build(ctx, rule, states)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("built ruleset",
		"rule", rule,
		"states", states,
		"windows", rs.Perms(),
		"duration", time.Since(start))
	return rs, nil
}

// AnalyzeWithCacheInfo analyzes a ruleset with caching and returns cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, rs *ruleset.Ruleset, opts Options) (*Analysis, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.AnalysisKey(rs.Rule(), rs.States(), opts.AnalysisKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var a Analysis
			if err := json.Unmarshal(data, &a); err == nil {
				return &a, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", cacheKey, "error", err)
		}
	}

	start := time.Now()
	a, err := analyze(ctx, rs, opts)
	if err != nil {
		return nil, false, err
	}
	elapsed := time.Since(start)
	observability.Engine().OnAnalyzeComplete(ctx, rs.States(), a.Classification.Class, elapsed)
	r.Logger.Debug("analyzed ruleset",
		"rule", rs.Rule(),
		"class", a.Classification.Name(),
		"cycles", len(a.Cycles),
		"duration", elapsed)

	if data, err := json.Marshal(a); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		}
	}
	return a, false, nil // Cache miss
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, rs *ruleset.Ruleset, opts Options) (*Analysis, error) {
	a, _, err := r.AnalyzeWithCacheInfo(ctx, rs, opts)
	return a, err
}

func analyze(ctx context.Context, rs *ruleset.Ruleset, opts Options) (*Analysis, error) {
	counts := rs.Transitions()
	p := markov.FromCounts(counts).Normalize()

	a := &Analysis{
		Rule:           rs.Rule(),
		States:         rs.States(),
		Classification: markov.Classify(counts, opts.Steps),
		Degrees:        p.Degrees(),
		Reachable:      markov.Reachable(p),
		Classes:        markov.CommunicatingClasses(p),
	}
	for i := range rs.Perms() {
		if counts[i][i] == rs.Fanout() {
			a.Absorbing = append(a.Absorbing, i)
		}
	}

	// Cycle enumeration is the only step that can run long.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.Cycles, a.CyclesTruncated = markov.Cycles(p, opts.cycleLimit())
	return a, nil
}

// RenderWithCacheInfo produces one output format with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rs *ruleset.Ruleset, format string, opts Options) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := errors.ValidateFormat(format); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.ArtifactKey(rs.Rule(), rs.States(), opts.ArtifactKeyOpts(format))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			return data, true, nil
		}
	}

	start := time.Now()
	data, err := render(ctx, rs, format, opts)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered ruleset",
		"rule", rs.Rule(),
		"format", format,
		"bytes", len(data),
		"duration", time.Since(start))

	if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
	}
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, rs *ruleset.Ruleset, format string, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, rs, format, opts)
	return data, err
}

func render(ctx context.Context, rs *ruleset.Ruleset, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := rgio.WriteJSON(rs, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT, FormatSVG:
		dot := nodelink.ToDOT(rs, nodelink.Options{
			Probabilities: opts.Probabilities,
			Glyphs:        opts.Glyphs,
		})
		if format == FormatDOT {
			return []byte(dot), nil
		}
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	}
	return nil, fmt.Errorf("unhandled format %q", format)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
