package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/digits"
	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/markov"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

// exploreMaxStates bounds the explorer; larger matrices do not fit a terminal.
const exploreMaxStates = 3

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	cellZeroStyle  = lipgloss.NewStyle().Foreground(colorDim)
	cellStyle      = lipgloss.NewStyle().Foreground(colorWhite)
	cellSelfStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <states> [rule]",
		Short: "Browse neighbouring rules interactively",
		Long: `Open an interactive view of a ruleset: its update table, class and
transition matrix. Step through rules with the arrow keys.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeStates,
		RunE: func(cmd *cobra.Command, args []string) error {
			states, err := parseInt("states", args[0])
			if err != nil {
				return err
			}
			if err := errors.ValidateStates(states, exploreMaxStates); err != nil {
				return err
			}
			rule := 0
			if len(args) == 2 {
				if rule, err = parseInt("rule", args[1]); err != nil {
					return err
				}
			}
			m, err := NewExploreModel(states, rule, c.conf().Steps)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// =============================================================================
// ExploreModel - Interactive ruleset browser
// =============================================================================

// ExploreModel is the bubbletea model for stepping through rules.
type ExploreModel struct {
	States  int
	Rule    int
	MaxRule int
	Steps   int

	Ruleset *ruleset.Ruleset
	Class   markov.Classification

	Offset int // first transition row shown
	Height int // transition rows shown
}

// NewExploreModel creates an explorer positioned at rule.
func NewExploreModel(states, rule, steps int) (ExploreModel, error) {
	m := ExploreModel{
		States:  states,
		MaxRule: maxRule(states),
		Steps:   steps,
		Height:  12,
	}
	if err := m.load(rule); err != nil {
		return m, err
	}
	return m, nil
}

// maxRule returns the largest valid rule, or math.MaxInt when every
// non-negative int is valid.
func maxRule(states int) int {
	perms, ok := digits.Pow(states, ruleset.Width)
	if !ok {
		return math.MaxInt
	}
	total, ok := digits.Pow(states, perms)
	if !ok {
		return math.MaxInt
	}
	return total - 1
}

func (m *ExploreModel) load(rule int) error {
	rs, err := ruleset.New(rule, m.States)
	if err != nil {
		return err
	}
	m.Rule = rule
	m.Ruleset = rs
	m.Class = markov.Classify(rs.Transitions(), m.Steps)
	return nil
}

// step moves delta rules, clamped to the valid range.
func (m *ExploreModel) step(delta int) {
	next := m.Rule + delta
	switch {
	case delta > 0 && next < m.Rule: // overflow
		next = m.MaxRule
	case next > m.MaxRule:
		next = m.MaxRule
	case next < 0:
		next = 0
	}
	if next != m.Rule {
		_ = m.load(next)
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l":
			m.step(1)
		case "left", "h":
			m.step(-1)
		case "pgdown", "L":
			m.step(m.States * m.States)
		case "pgup", "H":
			m.step(-m.States * m.States)
		case "home":
			m.step(-m.Rule)
		case "down", "j":
			if m.Offset+m.Height < m.Ruleset.Perms() {
				m.Offset++
			}
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 4)
		if m.Offset+m.Height > m.Ruleset.Perms() {
			m.Offset = max(m.Ruleset.Perms()-m.Height, 0)
		}
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Rule %d · %d states", m.Rule, m.States)))
	b.WriteString("  ")
	b.WriteString(renderClass(m.Class.Class))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ rule  H/L jump  ↑/↓ scroll  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.updateTable())
	b.WriteString("\n\n")
	b.WriteString(m.transitionTable())
	b.WriteString("\n")

	if m.Rule == m.MaxRule {
		b.WriteString(listErrorStyle.Render("  last rule for this state count"))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  windows %d-%d of %d",
		m.Offset, min(m.Offset+m.Height, m.Ruleset.Perms())-1, m.Ruleset.Perms())))
	return b.String()
}

// updateTable shows each window's cells over the state it updates to.
func (m ExploreModel) updateTable() string {
	perms := m.Ruleset.Perms()
	windows := make([]string, perms)
	updates := make([]string, perms)
	for i := range perms {
		windows[i] = markov.WindowGlyphs(i, m.States)
		up, _ := m.Ruleset.UpState(i)
		updates[i] = " " + string(markov.Glyph(up, m.States)) + " "
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(windows, updates).
		Render()
}

// transitionTable shows the visible rows of the transition-count matrix.
func (m ExploreModel) transitionTable() string {
	perms := m.Ruleset.Perms()
	headers := make([]string, perms+1)
	for j := range perms {
		headers[j+1] = fmt.Sprintf("%02d", j)
	}

	end := min(m.Offset+m.Height, perms)
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		row := make([]string, perms+1)
		row[0] = fmt.Sprintf("%02d", i)
		for j, n := range m.Ruleset.TransitionRow(i) {
			row[j+1] = strconv.Itoa(n)
		}
		rows = append(rows, row)
	}

	offset := m.Offset
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 || col == 0 {
				return headerStyle
			}
			if row >= len(rows) || col >= len(rows[row]) {
				return lipgloss.NewStyle()
			}
			switch {
			case rows[row][col] == "0":
				return cellZeroStyle
			case row+offset == col-1:
				return cellSelfStyle
			}
			return cellStyle
		}).
		Render()
}
