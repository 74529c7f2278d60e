package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/markov"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
)

// maxListed bounds how many cycles and classes analyze prints.
const maxListed = 12

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	steps   int  // matrix power used for classification
	cycles  int  // cycle enumeration limit, negative for unlimited
	refresh bool // bypass the cache
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <states> <rule>",
		Short: "Analyze the transition matrix as a Markov chain",
		Long: `Normalize the transition matrix and report its Wolfram-style class,
absorbing windows, communicating classes and elementary cycles.`,
		Example:           "  rulegraph analyze 2 110\n  rulegraph analyze 2 30 --steps 101 --cycles -1",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeStates,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if cmd.Flags().Changed("steps") {
				popts.Steps = opts.steps
			}
			if cmd.Flags().Changed("cycles") {
				popts.CycleLimit = opts.cycles
			}
			popts.Refresh = opts.refresh

			rs, err := runner.Build(cmd.Context(), rule, states, popts)
			if err != nil {
				return err
			}
			a, cached, err := runner.AnalyzeWithCacheInfo(cmd.Context(), rs, popts)
			if err != nil {
				return err
			}
			writeAnalysis(cmd.OutOrStdout(), a, cached)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.steps, "steps", markov.DefaultSteps, "matrix power used for classification")
	cmd.Flags().IntVar(&opts.cycles, "cycles", pipeline.DefaultCycleLimit, "maximum cycles to enumerate (-1 for unlimited)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	return cmd
}

// writeAnalysis renders an analysis as styled key-value lines.
func writeAnalysis(w io.Writer, a *pipeline.Analysis, cached bool) {
	cl := a.Classification

	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Rule %d · %d states", a.Rule, a.States)))
	writeKeyValue(w, "class", fmt.Sprintf("%d (%s)", cl.Class, cl.Name()))
	writeKeyValue(w, "steps", strconv.Itoa(cl.Steps))
	writeKeyValue(w, "diagonal", fmt.Sprintf("%d ones, %d off-diagonal", cl.OnesOnDiagonal, cl.OnesOffDiagonal))
	writeKeyValue(w, "limit", limitSummary(cl))
	writeKeyValue(w, "absorbing", joinWindows(a.Absorbing, a.States))

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Communicating classes"))
	for i, cls := range a.Classes {
		if i == maxListed {
			writeDetail(w, "… %d more", len(a.Classes)-maxListed)
			break
		}
		kind := styleOpen.Render("open")
		if cls.Closed {
			kind = styleClosed.Render("closed")
		}
		fmt.Fprintf(w, "  %s %s\n", kind, StyleValue.Render(joinInts(cls.States)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Cycles (%d%s)", len(a.Cycles), truncatedMark(a.CyclesTruncated))))
	for i, cyc := range a.Cycles {
		if i == maxListed {
			writeDetail(w, "… %d more", len(a.Cycles)-maxListed)
			break
		}
		fmt.Fprintf(w, "  %s\n", StyleValue.Render(joinCycle(cyc)))
	}

	fmt.Fprintln(w)
	writeStats(w, cached, fmt.Sprintf("%d windows", len(a.Reachable)), fmt.Sprintf("%d classes", len(a.Classes)))
}

// limitSummary describes the matrix power the class was read from.
func limitSummary(cl markov.Classification) string {
	var parts []string
	if cl.CellsUniform {
		parts = append(parts, "uniform")
	}
	if cl.ColumnsUniform {
		parts = append(parts, "uniform columns")
	}
	if cl.NoZeros {
		parts = append(parts, "no zeros")
	} else {
		parts = append(parts, "zeros")
	}
	parts = append(parts, fmt.Sprintf("%d ones on diagonal", cl.PowerOnes))
	return strings.Join(parts, ", ")
}

func truncatedMark(truncated bool) string {
	if truncated {
		return "+, truncated"
	}
	return ""
}

func joinInts(vals []int) string {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = fmt.Sprintf("%02d", v)
	}
	return "{" + strings.Join(s, " ") + "}"
}

func joinCycle(cyc []int) string {
	s := make([]string, len(cyc)+1)
	for i, v := range cyc {
		s[i] = fmt.Sprintf("%02d", v)
	}
	s[len(cyc)] = fmt.Sprintf("%02d", cyc[0])
	return strings.Join(s, " "+iconArrow+" ")
}

func joinWindows(windows []int, states int) string {
	if len(windows) == 0 {
		return "none"
	}
	s := make([]string, len(windows))
	for i, w := range windows {
		s[i] = fmt.Sprintf("%02d %s", w, markov.WindowGlyphs(w, states))
	}
	return strings.Join(s, ", ")
}
