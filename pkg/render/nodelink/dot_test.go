package nodelink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

func mustRuleset(t *testing.T, rule, states int) *ruleset.Ruleset {
	t.Helper()
	rs, err := ruleset.New(rule, states)
	if err != nil {
		t.Fatalf("ruleset.New(%d, %d) error: %v", rule, states, err)
	}
	return rs
}

func TestToDOTRuleOne(t *testing.T) {
	dot := ToDOT(mustRuleset(t, 1, 2), Options{})

	if !strings.HasPrefix(dot, "digraph G {\n") || !strings.HasSuffix(dot, "}\n") {
		t.Fatalf("not a digraph:\n%s", dot)
	}
	for _, want := range []string{
		`"00" -> "02" [label="1"];`,
		`"01" -> "00" [label="2"];`,
		`"02" -> "00" [label="4"];`,
		`"04" -> "01" [label="2"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s", want)
		}
	}
	// row 0 has four targets, rows 1 and 4 two each, the rest one
	if got := strings.Count(dot, " -> "); got != 4+2+2+5 {
		t.Errorf("DOT has %d edges, want 13", got)
	}
}

func TestToDOTProbabilities(t *testing.T) {
	dot := ToDOT(mustRuleset(t, 1, 2), Options{Probabilities: true})
	if !strings.Contains(dot, `"00" -> "02" [label="0.25"];`) {
		t.Error("edge 00->02 should carry probability 0.25")
	}
	if !strings.Contains(dot, `"02" -> "00" [label="1.00"];`) {
		t.Error("edge 02->00 should carry probability 1.00")
	}
}

func TestToDOTSelfLoops(t *testing.T) {
	dot := ToDOT(mustRuleset(t, 204, 2), Options{})
	for _, id := range []string{"00", "03", "07"} {
		loop := `"` + id + `" -> "` + id + `" [label="4"];`
		if !strings.Contains(dot, loop) {
			t.Errorf("DOT missing self-loop %s", loop)
		}
	}
	if got := strings.Count(dot, "fillcolor=lightgrey"); got != 8 {
		t.Errorf("%d absorbing windows highlighted, want 8", got)
	}
}

func TestToDOTGlyphs(t *testing.T) {
	dot := ToDOT(mustRuleset(t, 0, 2), Options{Glyphs: true})
	if !strings.Contains(dot, `label="07\n███"`) {
		t.Errorf("node 07 should show its cells:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="x"><g/></svg>`)
	out := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200">`
	if !bytes.HasPrefix(out, []byte(want)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("SVG without viewBox should be left untouched")
	}
}
