package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/digits"
	"github.com/matzehuels/rulegraph/pkg/markov"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
	"github.com/matzehuels/rulegraph/pkg/store"
)

// exampleRules is how many rules per class the summary table lists.
const exampleRules = 6

// classifyOpts holds the command-line flags for the classify command.
type classifyOpts struct {
	from        int
	to          int // inclusive; derived from the state count when unset
	concurrency int
}

// classifyCommand creates the classify command, which sweeps a rule range.
func (c *CLI) classifyCommand() *cobra.Command {
	var opts classifyOpts

	cmd := &cobra.Command{
		Use:   "classify <states>",
		Short: "Classify every rule in a range",
		Long: `Classify a contiguous range of rules in parallel and summarize how many
fall into each class. The result is stored and can be listed with
"rulegraph sweeps list" when a MongoDB store is configured.`,
		Example:           "  rulegraph classify 2\n  rulegraph classify 3 --from 0 --to 9999 --concurrency 8",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeStates,
		RunE: func(cmd *cobra.Command, args []string) error {
			states, err := parseInt("states", args[0])
			if err != nil {
				return err
			}
			req := pipeline.SweepRequest{States: states, From: opts.from, To: opts.to}
			if !cmd.Flags().Changed("to") {
				req.To = lastRule(states, opts.from)
			}
			popts := c.pipelineOptions()
			if cmd.Flags().Changed("concurrency") {
				popts.Concurrency = opts.concurrency
			}
			return c.runClassify(cmd.Context(), cmd.OutOrStdout(), req, popts)
		},
	}

	cmd.Flags().IntVar(&opts.from, "from", 0, "first rule")
	cmd.Flags().IntVar(&opts.to, "to", 0, "last rule, inclusive (default: last rule for the state count)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel workers (default: one per CPU)")
	return cmd
}

// lastRule returns the default end of a sweep starting at from: the largest
// rule for the state count, capped at pipeline.MaxSweepRules rules.
func lastRule(states, from int) int {
	limit := from + pipeline.MaxSweepRules - 1
	perms, ok := digits.Pow(states, ruleset.Width)
	if !ok {
		return limit
	}
	total, ok := digits.Pow(states, perms)
	if !ok {
		return limit
	}
	return min(total-1, limit)
}

func (c *CLI) runClassify(ctx context.Context, w io.Writer, req pipeline.SweepRequest, popts pipeline.Options) error {
	if err := req.Validate(popts.MaxStates); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	total := req.To - req.From + 1
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Classifying %d rules...", total))
	spinner.Start()

	prog := newProgress(c.Logger)
	res, err := runner.Sweep(ctx, req, popts, func(done int) {
		spinner.SetMessage(fmt.Sprintf("Classifying rules %d/%d...", done, total))
	})
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Classified %d rules", total))

	if err := st.SaveSweep(ctx, res); err != nil {
		return err
	}

	writeSweep(w, res)
	if _, ok := st.(*store.MemoryStore); ok {
		printDetail("Sweep %s (configure store.mongo_uri to keep sweeps)", res.ID)
	} else {
		printSuccess("Stored sweep %s", res.ID)
	}
	if rules := res.Rules[markov.ClassName(markov.Complex)]; len(rules) > 0 {
		printNextStep("Inspect a complex rule", fmt.Sprintf("%s analyze %d %d", appName, req.States, rules[0]))
	}
	return nil
}

// sweepsCommand creates the sweeps command for browsing stored sweeps.
func (c *CLI) sweepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweeps",
		Short: "Browse stored classification sweeps",
	}
	cmd.AddCommand(c.sweepsListCommand())
	cmd.AddCommand(c.sweepsShowCommand())
	return cmd
}

func (c *CLI) sweepsListCommand() *cobra.Command {
	var states, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sweeps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			sweeps, err := st.ListSweeps(cmd.Context(), states, limit)
			if err != nil {
				return err
			}
			if len(sweeps) == 0 {
				printInfo("No stored sweeps")
				return nil
			}

			rows := make([][]string, len(sweeps))
			for i, s := range sweeps {
				rows[i] = []string{
					s.ID,
					strconv.Itoa(s.States),
					fmt.Sprintf("%d..%d", s.From, s.To),
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					s.Duration,
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), newTable("ID", "States", "Rules", "Created", "Duration").Rows(rows...).Render())
			return nil
		},
	}

	cmd.Flags().IntVar(&states, "states", 0, "only sweeps with this state count")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultListLimit, "maximum sweeps to list")
	return cmd
}

func (c *CLI) sweepsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the class summary of a stored sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			res, err := st.GetSweep(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeSweep(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

// writeSweep writes the per-class summary table of a sweep.
func writeSweep(w io.Writer, res *pipeline.SweepResult) {
	total := 0
	for _, n := range res.Counts {
		total += n
	}

	var rows [][]string
	for class := markov.Homogeneous; class <= markov.Complex; class++ {
		rows = append(rows, sweepRow(res, class, total))
	}
	if res.Counts[markov.ClassName(markov.Unclassified)] > 0 {
		rows = append(rows, sweepRow(res, markov.Unclassified, total))
	}

	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Rules %d..%d · %d states · %d steps", res.From, res.To, res.States, res.Steps)))
	fmt.Fprintln(w, newTable("Class", "Rules", "Share", "Examples").Rows(rows...).Render())
}

func sweepRow(res *pipeline.SweepResult, class, total int) []string {
	name := markov.ClassName(class)
	n := res.Counts[name]
	share := 0.0
	if total > 0 {
		share = 100 * float64(n) / float64(total)
	}

	rules := res.Rules[name]
	examples := make([]string, 0, exampleRules+1)
	for i, r := range rules {
		if i == exampleRules {
			examples = append(examples, "…")
			break
		}
		examples = append(examples, strconv.Itoa(r))
	}
	return []string{renderClass(class), strconv.Itoa(n), fmt.Sprintf("%.1f%%", share), strings.Join(examples, " ")}
}

// newTable creates a table in the CLI's border style.
func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
