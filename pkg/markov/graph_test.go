package markov

import (
	"reflect"
	"testing"

	"github.com/matzehuels/rulegraph/pkg/ruleset"
)

func transitions(t *testing.T, rule, states int) *Matrix {
	t.Helper()
	rs, err := ruleset.New(rule, states)
	if err != nil {
		t.Fatalf("ruleset.New(%d, %d) error: %v", rule, states, err)
	}
	return FromCounts(rs.Transitions()).Normalize()
}

func TestReachableRuleOne(t *testing.T) {
	got := Reachable(transitions(t, 1, 2))

	core := []int{0, 2, 3, 6, 7}
	wide := []int{0, 1, 2, 3, 4, 6, 7}
	want := [][]int{core, wide, core, core, wide, core, core, core}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reachable() = %v, want %v", got, want)
	}
}

func TestReachableSelfOnlyOnCycle(t *testing.T) {
	m := FromCounts([][]int{
		{0, 1, 0},
		{0, 0, 1},
		{0, 0, 1},
	})
	got := Reachable(m)
	want := [][]int{{1, 2}, {2}, {2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reachable() = %v, want %v", got, want)
	}
}

func TestCommunicatingClasses(t *testing.T) {
	got := CommunicatingClasses(transitions(t, 1, 2))
	want := []Class{
		{States: []int{0, 2, 3, 6, 7}, Closed: true},
		{States: []int{1, 4}, Closed: false},
		{States: []int{5}, Closed: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CommunicatingClasses() = %+v, want %+v", got, want)
	}
}

func TestCommunicatingClassesIdentity(t *testing.T) {
	classes := CommunicatingClasses(transitions(t, 204, 2))
	if len(classes) != 8 {
		t.Fatalf("got %d classes, want 8", len(classes))
	}
	for i, c := range classes {
		if len(c.States) != 1 || c.States[0] != i || !c.Closed {
			t.Errorf("class %d = %+v, want closed singleton", i, c)
		}
	}
}

func TestCycles(t *testing.T) {
	tests := []struct {
		name string
		rule int
		want [][]int
	}{
		{"rule 0", 0, [][]int{{0}}},
		{"rule 1", 1, [][]int{{0, 2}, {0, 3}, {0, 6}, {0, 7}, {1, 4}}},
		{"rule 204", 204, [][]int{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Cycles(transitions(t, tt.rule, 2), 0)
			if truncated {
				t.Error("unlimited enumeration reported truncation")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Cycles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCyclesLimit(t *testing.T) {
	m := transitions(t, 110, 2)

	all, truncated := Cycles(m, 0)
	if truncated || len(all) != 13 {
		t.Fatalf("rule 110 has %d cycles (truncated=%v), want 13", len(all), truncated)
	}

	some, truncated := Cycles(m, 5)
	if !truncated {
		t.Error("limited enumeration should report truncation")
	}
	if len(some) != 5 {
		t.Errorf("got %d cycles, want 5", len(some))
	}
}

func TestCyclesStartAtSmallestState(t *testing.T) {
	cycles, _ := Cycles(transitions(t, 110, 2), 0)
	for _, c := range cycles {
		for _, v := range c[1:] {
			if v <= c[0] {
				t.Errorf("cycle %v does not start at its smallest state", c)
			}
		}
	}
}
