package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/markov"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
)

// run executes the root command with a config that disables caching.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithConfig(t, "[cache]\nbackend = \"null\"\n", args...)
}

// runWithConfig executes the root command with the given config file contents.
func runWithConfig(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	out, err := run(t, "report", "2", "1")
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	for _, want := range []string{
		"Ruleset: 1 for 2 states",
		"Update rules: [1,0,0,0,0,0,0,0]",
		"00->|07,03,06,02|",
		"01->|04,00,04,00|",
		" --- Unomralized Transition Matrix ---",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestReportCommandErrors(t *testing.T) {
	tests := []struct {
		args []string
		code errors.Code
	}{
		{[]string{"report", "1", "0"}, errors.ErrCodeInvalidStates},
		{[]string{"report", "2", "256"}, errors.ErrCodeRuleOutOfRange},
		{[]string{"report", "two", "1"}, errors.ErrCodeInvalidInput},
		{[]string{"report", "7", "1"}, errors.ErrCodeInvalidStates},
		{[]string{"graph", "2", "1", "-f", "png"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReportIgnoresCacheBackend(t *testing.T) {
	// Nothing listens on port 1, so opening this cache would fail.
	config := "[cache]\nbackend = \"redis\"\nredis_addr = \"127.0.0.1:1\"\n"
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"report", "2", "1"}, "Ruleset: 1 for 2 states"},
		{[]string{"export", "2", "1"}, `"rule": 1`},
	}
	for _, tt := range tests {
		out, err := runWithConfig(t, config, tt.args...)
		if err != nil {
			t.Fatalf("%s error: %v", tt.args[0], err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s output missing %q:\n%s", tt.args[0], tt.want, out)
		}
	}
}

func TestImportRespectsMaxStates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	if err := os.WriteFile(path, []byte(`{"rule": 0, "states": 40}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "import", path); !errors.Is(err, errors.ErrCodeInvalidStates) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidStates)
	}
}

func TestMissingConfigFile(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "report", "2", "0"})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := run(t, "analyze", "2", "1")
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	for _, want := range []string{"Rule 1 · 2 states", "2 (periodic)", "Cycles (5)", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "analyze", "2", "110", "--cycles", "2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cycles (2+, truncated)") {
		t.Errorf("truncated cycles not reported:\n%s", out)
	}
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", "2", "204", "--probabilities")
	if err != nil {
		t.Fatalf("graph error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph G {") || !strings.Contains(out, `label="1.00"`) {
		t.Errorf("graph output:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "g.dot")
	if _, err := run(t, "graph", "2", "30", "-o", path); err != nil {
		t.Fatal(err)
	}
	if data, err := os.ReadFile(path); err != nil || !bytes.HasPrefix(data, []byte("digraph")) {
		t.Errorf("graph file = %.20s, err %v", data, err)
	}
}

func TestExportImportCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.json")
	if _, err := run(t, "export", "2", "90", "-o", path); err != nil {
		t.Fatalf("export error: %v", err)
	}
	out, err := run(t, "import", path)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if !strings.HasPrefix(out, "Ruleset: 90 for 2 states") {
		t.Errorf("import report:\n%s", out)
	}

	out, err = run(t, "export", "2", "90")
	if err != nil || !strings.Contains(out, `"rule": 90`) {
		t.Errorf("export to stdout = %.80s, err %v", out, err)
	}
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "classify", "2", "--to", "15", "--concurrency", "2")
	if err != nil {
		t.Fatalf("classify error: %v", err)
	}
	for _, want := range []string{"Rules 0..15", "homogeneous", "periodic", "Examples"} {
		if !strings.Contains(out, want) {
			t.Errorf("classify output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "classify", "2", "--from", "10", "--to", "5"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("reversed range error = %v", err)
	}
}

func TestLastRule(t *testing.T) {
	tests := []struct {
		states, from, want int
	}{
		{2, 0, 255},
		{2, 100, 255},
		{3, 0, pipeline.MaxSweepRules - 1},
		{4, 10, 10 + pipeline.MaxSweepRules - 1},
	}
	for _, tt := range tests {
		if got := lastRule(tt.states, tt.from); got != tt.want {
			t.Errorf("lastRule(%d, %d) = %d, want %d", tt.states, tt.from, got, tt.want)
		}
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "(disabled)" {
		t.Errorf("cache path = %q", out)
	}
}

func TestPipelineOptions(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	opts := c.pipelineOptions()
	if opts.MaxStates != 6 || opts.Steps != markov.DefaultSteps || opts.CycleLimit != 1000 {
		t.Errorf("options = %+v", opts)
	}

	c.conf().CycleLimit = 0
	if got := c.pipelineOptions().CycleLimit; got >= 0 {
		t.Errorf("config cycle_limit 0 should map to unlimited, got %d", got)
	}
}

func TestExploreModel(t *testing.T) {
	m, err := NewExploreModel(2, 0, markov.DefaultSteps)
	if err != nil {
		t.Fatal(err)
	}
	if m.MaxRule != 255 || m.Class.Class != markov.Homogeneous {
		t.Errorf("initial model = rule %d max %d class %d", m.Rule, m.MaxRule, m.Class.Class)
	}

	press := func(m ExploreModel, key tea.KeyMsg) ExploreModel {
		next, _ := m.Update(key)
		return next.(ExploreModel)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Rule != 0 {
		t.Errorf("left at rule 0 moved to %d", m.Rule)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.Rule != 1 || m.Class.Class != markov.Periodic {
		t.Errorf("after right: rule %d class %d", m.Rule, m.Class.Class)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	if m.Rule != 5 {
		t.Errorf("jump moved to %d, want 5", m.Rule)
	}
	for range 100 {
		m = press(m, tea.KeyMsg{Type: tea.KeyPgDown})
	}
	if m.Rule != 255 {
		t.Errorf("rule should clamp at 255, got %d", m.Rule)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyHome})
	if m.Rule != 0 {
		t.Errorf("home moved to %d", m.Rule)
	}

	view := m.View()
	if !strings.Contains(view, "Rule 0 · 2 states") || !strings.Contains(view, "homogeneous") {
		t.Errorf("view:\n%s", view)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func TestExploreModelRejectsBadRule(t *testing.T) {
	if _, err := NewExploreModel(2, 256, markov.DefaultSteps); !errors.Is(err, errors.ErrCodeRuleOutOfRange) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeRuleOutOfRange)
	}
}

func TestCompleteStates(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.conf().MaxStates = 4

	got, directive := c.completeStates(nil, nil, "")
	if strings.Join(got, " ") != "2 3 4" || directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("completeStates = %v, %d", got, directive)
	}
	if got, _ := c.completeStates(nil, []string{"2"}, ""); got != nil {
		t.Errorf("rule argument should not be completed, got %v", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "fish")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "rulegraph") {
		t.Errorf("fish completion should mention rulegraph:\n%.200s", out)
	}
}
