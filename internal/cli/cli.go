// Package cli implements the rulegraph command-line interface.
//
// The commands build the ruleset of a range-1 cellular automaton rule and
// inspect it from several angles:
//   - report: the update table, adjacency and transition matrices as text
//   - analyze: the Markov-chain analysis and Wolfram-style class
//   - graph: the transition graph as Graphviz DOT or SVG
//   - export / import: the JSON ruleset document
//   - classify / sweeps: classification of rule ranges
//   - explore: an interactive browser over neighbouring rules
//   - serve: the HTTP API
//   - cache: inspect and clear the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log. Results go to stdout; logs and the spinner go to stderr.
package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/buildinfo"
	"github.com/matzehuels/rulegraph/pkg/cache"
	"github.com/matzehuels/rulegraph/pkg/config"
	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
	"github.com/matzehuels/rulegraph/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "rulegraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Rulegraph turns cellular automaton rules into Markov chains",
		Long: `Rulegraph decomposes a rule number into the update table of a one-dimensional,
range-1 cellular automaton and derives the window adjacency and transition
matrices. The transition matrix is analyzed as a Markov chain to classify
the rule.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	// Register all subcommands
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.sweepsCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// conf returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (tests).
func (c *CLI) conf() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// pipelineOptions maps the configuration onto pipeline options.
func (c *CLI) pipelineOptions() pipeline.Options {
	cfg := c.conf()
	opts := pipeline.Options{
		MaxStates:   cfg.MaxStates,
		Steps:       cfg.Steps,
		CycleLimit:  cfg.CycleLimit,
		Concurrency: cfg.Concurrency,
		Logger:      c.Logger,
	}
	// Zero means unlimited in the config file but "use the default" in
	// pipeline options.
	if opts.CycleLimit == 0 {
		opts.CycleLimit = -1
	}
	return opts
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	r.TTL = c.conf().Cache.TTL
	return r, nil
}

// openCache opens the configured backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.conf().Cache
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.Open(ctx, cache.Options{
		Backend:    cfg.Backend,
		Dir:        cfg.Dir,
		BadgerPath: cfg.BadgerPath,
		Redis: cache.RedisOptions{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		},
	})
	if err != nil {
		if cfg.Backend == config.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return ch, nil
}

// openStore connects to MongoDB when configured, else keeps sweeps in memory.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.conf().Store
	if cfg.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	c.Logger.Debug("connecting to mongodb", "database", cfg.Database)
	return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseInt parses a positional integer argument.
func parseInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// parseRuleArgs parses the <states> <rule> positional arguments.
func parseRuleArgs(args []string) (states, rule int, err error) {
	if states, err = parseInt("states", args[0]); err != nil {
		return 0, 0, err
	}
	if rule, err = parseInt("rule", args[1]); err != nil {
		return 0, 0, err
	}
	return states, rule, nil
}
