// Package pipeline runs the build → analyze → render stages for rulesets.
//
// The CLI and the HTTP server both go through a [Runner] so that caching,
// validation and logging behave the same at every entry point.
//
// # Stages
//
//  1. Build: validate the state count and construct the [ruleset.Ruleset]
//  2. Analyze: classify the transition matrix and enumerate its structure
//  3. Render: produce DOT, SVG or JSON output
//
// Analysis and render results are cached; building is cheap enough to
// redo. [Runner.Sweep] classifies a range of rules concurrently.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	rs, err := runner.Build(ctx, 110, 2, opts)
//	a, err := runner.Analyze(ctx, rs, opts)
//	svg, err := runner.Render(ctx, rs, pipeline.FormatSVG, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rulegraph/pkg/cache"
	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/markov"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxStates bounds the accepted state count. A ruleset has
	// states^3 windows and states^6 transition cells.
	DefaultMaxStates = 6

	// DefaultSteps is the matrix power inspected by classification.
	DefaultSteps = markov.DefaultSteps

	// DefaultCycleLimit caps cycle enumeration per analysis.
	DefaultCycleLimit = 1000

	// DefaultTTL is how long analyses and artifacts stay cached.
	DefaultTTL = 7 * 24 * time.Hour

	// MaxSweepRules bounds the number of rules in one sweep.
	MaxSweepRules = 1 << 16
)

// Format constants for render outputs.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	MaxStates int `json:"max_states,omitempty"`

	// Analysis options
	Steps      int  `json:"steps,omitempty"`
	CycleLimit int  `json:"cycle_limit,omitempty"`
	Refresh    bool `json:"refresh,omitempty"`

	// Render options
	Probabilities bool `json:"probabilities,omitempty"`
	Glyphs        bool `json:"glyphs,omitempty"`

	// Sweep options
	Concurrency int `json:"concurrency,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero fields with their defaults. A negative CycleLimit
// stays negative and means unlimited.
func (o *Options) SetDefaults() {
	if o.MaxStates == 0 {
		o.MaxStates = DefaultMaxStates
	}
	if o.Steps == 0 {
		o.Steps = DefaultSteps
	}
	if o.CycleLimit == 0 {
		o.CycleLimit = DefaultCycleLimit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option ranges after defaults are applied.
func (o *Options) Validate() error {
	if o.Steps < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "steps must be positive, got %d", o.Steps)
	}
	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must not be negative, got %d", o.Concurrency)
	}
	return nil
}

// cycleLimit returns the limit passed to markov.Cycles, where zero means
// unlimited.
func (o *Options) cycleLimit() int {
	return max(o.CycleLimit, 0)
}

// AnalysisKeyOpts returns cache key options for analysis.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		Steps:      o.Steps,
		CycleLimit: o.cycleLimit(),
	}
}

// ArtifactKeyOpts returns cache key options for a rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:        format,
		Probabilities: o.Probabilities,
		Glyphs:        o.Glyphs,
	}
}

// =============================================================================
// Results
// =============================================================================

// Analysis is the Markov-chain view of one ruleset.
type Analysis struct {
	Rule           int                   `json:"rule"`
	States         int                   `json:"states"`
	Classification markov.Classification `json:"classification"`

	// Absorbing lists windows that map onto themselves with certainty.
	Absorbing []int `json:"absorbing"`

	// Degrees is in-weight minus out-weight of every window in the
	// normalized matrix.
	Degrees []float64 `json:"degrees"`

	Reachable       [][]int        `json:"reachable"`
	Classes         []markov.Class `json:"classes"`
	Cycles          [][]int        `json:"cycles"`
	CyclesTruncated bool           `json:"cycles_truncated,omitempty"`
}

// ClosedClasses returns the communicating classes no transition leaves.
func (a *Analysis) ClosedClasses() []markov.Class {
	var out []markov.Class
	for _, c := range a.Classes {
		if c.Closed {
			out = append(out, c)
		}
	}
	return out
}
