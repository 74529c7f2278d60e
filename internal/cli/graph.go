package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output        string // output file path, stdout when empty
	format        string // "dot" or "svg"
	probabilities bool   // label edges with probabilities instead of counts
	glyphs        bool   // draw cell patterns in node labels
	refresh       bool   // bypass the cache
}

// graphCommand creates the graph command, which renders the transition graph.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: pipeline.FormatDOT}

	cmd := &cobra.Command{
		Use:   "graph <states> <rule>",
		Short: "Render the transition graph as DOT or SVG",
		Example: `  rulegraph graph 2 110 | dot -Tpng > rule110.png
  rulegraph graph 2 30 -f svg -o rule30.svg --probabilities --glyphs`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeStates,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != pipeline.FormatDOT && opts.format != pipeline.FormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			states, rule, err := parseRuleArgs(args)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			popts := c.pipelineOptions()
			popts.Probabilities = opts.probabilities
			popts.Glyphs = opts.glyphs
			popts.Refresh = opts.refresh

			rs, err := runner.Build(cmd.Context(), rule, states, popts)
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			data, cached, err := runner.RenderWithCacheInfo(cmd.Context(), rs, opts.format, popts)
			if err != nil {
				return err
			}

			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			if cached {
				c.Logger.Debug("rendered from cache", "format", opts.format)
			}
			prog.done(fmt.Sprintf("Rendered rule %d as %s", rule, opts.format))
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().BoolVar(&opts.probabilities, "probabilities", false, "label edges with transition probabilities")
	cmd.Flags().BoolVar(&opts.glyphs, "glyphs", false, "show cell patterns in node labels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	return cmd
}
