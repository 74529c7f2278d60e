package ruleset

import (
	"context"
	"time"

	"github.com/matzehuels/rulegraph/pkg/digits"
	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/observability"
)

// Width is the number of cells in a window: left neighbour, center, right
// neighbour. Only range-1 rulesets are supported.
const Width = 3

// Ruleset is the decomposition of one rule number for a given state count.
//
// All matrices are computed by New and never change afterwards. Accessors
// return copies, so a Ruleset is safe to share between goroutines.
type Ruleset struct {
	rule   int
	states int
	perms  int

	upStates []int   // window index -> updated center state
	adj      [][]int // window index -> states*states successor windows
	trans    [][]int // trans[i][j] = occurrences of j in adj[i]
}

// New decomposes rule into the update table of a states-valued, range-1
// cellular automaton and builds its adjacency and transition matrices.
//
// It returns an INVALID_STATES error for states < 2, INVALID_RULE for a
// negative rule, and RULE_OUT_OF_RANGE when rule needs more than states^3
// base-states digits. Rule 0 is valid for every state count. An OVERFILL
// error means the transition matrix broke its row-sum invariant, which is a
// defect in this package rather than bad input.
func New(rule, states int) (*Ruleset, error) {
	return Build(context.Background(), rule, states)
}

// Build is New with a context. The context reaches the observability hooks
// and is checked between adjacency rows; a cancelled build returns ctx.Err().
func Build(ctx context.Context, rule, states int) (*Ruleset, error) {
	hooks := observability.Engine()
	hooks.OnBuildStart(ctx, rule, states)
	start := time.Now()

	rs, err := build(ctx, rule, states)
	hooks.OnBuildComplete(ctx, rule, states, time.Since(start), err)
	return rs, err
}

func build(ctx context.Context, rule, states int) (*Ruleset, error) {
	if err := errors.ValidateStates(states, 0); err != nil {
		return nil, err
	}
	if err := errors.ValidateRule(rule); err != nil {
		return nil, err
	}

	perms, ok := digits.Pow(states, Width)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidStates, "state count %d is too large", states)
	}
	if rule > 0 && !digits.Fits(rule, states, perms) {
		return nil, errors.New(errors.ErrCodeRuleOutOfRange,
			"rule %d needs %d base-%d digits but only %d windows exist",
			rule, digits.Len(rule, states), states, perms)
	}

	rs := &Ruleset{
		rule:     rule,
		states:   states,
		perms:    perms,
		upStates: digits.FromInt(rule, states, perms),
	}
	adj, err := rs.buildAdjacency(ctx)
	if err != nil {
		return nil, err
	}
	rs.adj = adj

	trans, err := rs.buildTransitions()
	if err != nil {
		return nil, err
	}
	rs.trans = trans
	return rs, nil
}

// buildAdjacency computes, for every window, the windows its cells can turn
// into after one step.
//
// A window (d0, d1, d2) overlaps the window shifted one cell towards d0,
// (j, d0, d1), and the one shifted towards d2, (d1, d2, j), for every
// unknown outer cell j. After one step the d0 cell takes the update value of
// the first, the d1 cell that of the window itself and the d2 cell that of
// the second. Enumerating both outer cells gives states*states successors.
func (r *Ruleset) buildAdjacency(ctx context.Context) ([][]int, error) {
	fanout := r.states * r.states
	adj := make([][]int, r.perms)

	toward0 := make([]int, r.states)
	toward2 := make([]int, r.states)
	for i := range adj {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := digits.FromInt(i, r.states, Width)
		for j := range r.states {
			toward0[j] = digits.ToInt([]int{j, w[0], w[1]}, r.states)
			toward2[j] = digits.ToInt([]int{w[1], w[2], j}, r.states)
		}

		center := r.upStates[i]
		row := make([]int, 0, fanout)
		for _, a := range toward0 {
			for _, b := range toward2 {
				next := digits.ToInt([]int{r.upStates[a], center, r.upStates[b]}, r.states)
				row = append(row, next)
			}
		}
		adj[i] = row
	}
	return adj, nil
}

// buildTransitions counts the adjacency edges between every pair of windows.
// Row i is indexed by source window, so every row must sum to states*states.
func (r *Ruleset) buildTransitions() ([][]int, error) {
	fanout := r.states * r.states
	trans := make([][]int, r.perms)
	for i := range trans {
		trans[i] = make([]int, r.perms)
	}

	for i, row := range r.adj {
		for _, j := range row {
			trans[i][j]++
		}
	}

	for i, row := range trans {
		sum := 0
		for _, c := range row {
			sum += c
		}
		if sum != fanout {
			return nil, errors.New(errors.ErrCodeOverfill,
				"transition row %d sums to %d, want %d", i, sum, fanout)
		}
	}
	return trans, nil
}

// Rule returns the rule number.
func (r *Ruleset) Rule() int { return r.rule }

// States returns the number of cell states.
func (r *Ruleset) States() int { return r.states }

// Perms returns the number of windows, states^3.
func (r *Ruleset) Perms() int { return r.perms }

// Fanout returns the number of successors per window, states^2.
func (r *Ruleset) Fanout() int { return r.states * r.states }

// UpState returns the state the center cell of window n takes after one step.
func (r *Ruleset) UpState(n int) (int, error) {
	if n < 0 || n >= r.perms {
		return 0, errors.New(errors.ErrCodeIndexOutOfRange,
			"window %d outside [0, %d)", n, r.perms)
	}
	return r.upStates[n], nil
}

// UpStates returns a copy of the update table.
func (r *Ruleset) UpStates() []int {
	return append([]int(nil), r.upStates...)
}

// Window returns the cell states of window i, least significant digit first.
func (r *Ruleset) Window(i int) [Width]int {
	var w [Width]int
	copy(w[:], digits.FromInt(i, r.states, Width))
	return w
}

// Adjacency returns a copy of the successor windows of window i, or nil if i
// is out of range.
func (r *Ruleset) Adjacency(i int) []int {
	if i < 0 || i >= r.perms {
		return nil
	}
	return append([]int(nil), r.adj[i]...)
}

// AdjacencyMatrix returns a copy of the full adjacency matrix.
func (r *Ruleset) AdjacencyMatrix() [][]int {
	return clone(r.adj)
}

// TransitionRow returns a copy of row i of the transition matrix, or nil if i
// is out of range.
func (r *Ruleset) TransitionRow(i int) []int {
	if i < 0 || i >= r.perms {
		return nil
	}
	return append([]int(nil), r.trans[i]...)
}

// Transitions returns a copy of the unnormalized transition matrix.
func (r *Ruleset) Transitions() [][]int {
	return clone(r.trans)
}

func clone(m [][]int) [][]int {
	out := make([][]int, len(m))
	for i, row := range m {
		out[i] = append([]int(nil), row...)
	}
	return out
}
