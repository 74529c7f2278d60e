package markov_test

import (
	"fmt"

	"github.com/matzehuels/rulegraph/pkg/markov"
	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

func ExampleClassify() {
	rs, _ := ruleset.New(30, 2)
	c := markov.Classify(rs.Transitions(), markov.DefaultSteps)
	fmt.Println(c.Class, c.Name())
	// Output: 3 chaotic
}

func ExampleWindowGlyphs() {
	for _, i := range []int{0, 1, 6, 7} {
		fmt.Println(i, markov.WindowGlyphs(i, 2))
	}
	// Output:
	// 0 ░░░
	// 1 ░░█
	// 6 ██░
	// 7 ███
}
