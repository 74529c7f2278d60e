package cli

import (
	"context"

	"github.com/spf13/cobra"

	rgio "github.com/matzehuels/rulegraph/pkg/io"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

// reportCommand creates the report command, the plain-text view of a ruleset.
func (c *CLI) reportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report <states> <rule>",
		Short: "Print the update table, adjacency and transition matrices",
		Long: `Print the textual report of a ruleset: the update rules, the adjacency
list of every window and the unnormalized transition matrix.`,
		Example:           "  rulegraph report 2 110",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeStates,
		RunE: func(cmd *cobra.Command, args []string) error {
			states, rule, err := parseRuleArgs(args)
			if err != nil {
				return err
			}
			rs, err := c.build(cmd.Context(), rule, states)
			if err != nil {
				return err
			}
			return rs.WriteReport(cmd.OutOrStdout())
		},
	}
}

// build constructs a ruleset under the configured state limit. Rulesets are
// never cached, so no cache backend is opened.
func (c *CLI) build(ctx context.Context, rule, states int) (*ruleset.Ruleset, error) {
	return pipeline.NewRunner(nil, nil, c.Logger).Build(ctx, rule, states, c.pipelineOptions())
}

// exportCommand creates the export command, which writes the JSON document.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "export <states> <rule>",
		Short:             "Export a ruleset as JSON",
		Example:           "  rulegraph export 3 7625597484986 -o rule.json",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeStates,
		RunE: func(cmd *cobra.Command, args []string) error {
			states, rule, err := parseRuleArgs(args)
			if err != nil {
				return err
			}
			rs, err := c.build(cmd.Context(), rule, states)
			if err != nil {
				return err
			}
			if output == "" {
				return rgio.WriteJSON(rs, cmd.OutOrStdout())
			}
			if err := rgio.ExportJSON(rs, output); err != nil {
				return err
			}
			printSuccess("Exported rule %d for %d states", rule, states)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// importCommand creates the import command. It verifies a JSON document
// against a fresh build and prints its report.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Verify an exported ruleset and print its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := rgio.ImportJSON(args[0], c.conf().MaxStates)
			if err != nil {
				return err
			}
			c.Logger.Debug("verified document", "file", args[0], "rule", rs.Rule(), "states", rs.States())
			return rs.WriteReport(cmd.OutOrStdout())
		},
	}
}
