package markov

import (
	"strings"

	"github.com/matzehuels/rulegraph/pkg/digits"
)

var shades = []rune{'░', '▒', '▓', '█'}

// Glyph returns the block character for one cell state. State 0 is the
// lightest shade and states-1 the darkest.
func Glyph(state, states int) rune {
	if states < 2 || state <= 0 {
		return shades[0]
	}
	if state >= states-1 {
		return shades[len(shades)-1]
	}
	return shades[state*(len(shades)-1)/(states-1)]
}

// WindowGlyphs renders window i of a ruleset with the given state count as
// three block characters, left cell first.
func WindowGlyphs(i, states int) string {
	d := digits.FromInt(i, states, 3)
	var b strings.Builder
	for k := len(d) - 1; k >= 0; k-- {
		b.WriteRune(Glyph(d[k], states))
	}
	return b.String()
}
