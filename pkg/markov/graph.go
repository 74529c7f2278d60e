package markov

import (
	"slices"
)

// successors returns, for every state, the states it moves to with non-zero
// probability, in ascending order.
func successors(m *Matrix) [][]int {
	out := make([][]int, m.n)
	for i := range m.n {
		for j := range m.n {
			if m.At(i, j) > 0 {
				out[i] = append(out[i], j)
			}
		}
	}
	return out
}

// Reachable returns, for every state, the sorted list of states reachable
// from it in one or more steps. A state appears in its own list only if it
// lies on a cycle.
func Reachable(m *Matrix) [][]int {
	next := successors(m)
	out := make([][]int, m.n)
	for s := range m.n {
		seen := make([]bool, m.n)
		queue := append([]int(nil), next[s]...)
		for _, v := range queue {
			seen[v] = true
		}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, w := range next[v] {
				if !seen[w] {
					seen[w] = true
					queue = append(queue, w)
				}
			}
		}
		for v, ok := range seen {
			if ok {
				out[s] = append(out[s], v)
			}
		}
	}
	return out
}

// Class is a communicating class: a maximal set of states that can all reach
// each other.
type Class struct {
	States []int `json:"states"`
	// Closed is true when no transition leaves the class. A closed class is
	// where the chain ends up.
	Closed bool `json:"closed"`
}

// CommunicatingClasses partitions the states into communicating classes,
// ordered by their smallest state.
func CommunicatingClasses(m *Matrix) []Class {
	next := successors(m)
	comp := tarjan(next)

	byComp := map[int][]int{}
	for v, c := range comp {
		byComp[c] = append(byComp[c], v)
	}

	classes := make([]Class, 0, len(byComp))
	for c, states := range byComp {
		closed := true
	outer:
		for _, v := range states {
			for _, w := range next[v] {
				if comp[w] != c {
					closed = false
					break outer
				}
			}
		}
		classes = append(classes, Class{States: states, Closed: closed})
	}
	slices.SortFunc(classes, func(a, b Class) int { return a.States[0] - b.States[0] })
	return classes
}

// tarjan returns the strongly connected component id of every vertex.
func tarjan(next [][]int) []int {
	n := len(next)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	comp := make([]int, n)
	for i := range index {
		index[i] = -1
	}

	var stack []int
	counter, comps := 0, 0

	var visit func(v int)
	visit = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range next[v] {
			switch {
			case index[w] == -1:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp[w] = comps
				if w == v {
					break
				}
			}
			comps++
		}
	}

	for v := range n {
		if index[v] == -1 {
			visit(v)
		}
	}
	return comp
}

// Cycles returns the elementary cycles of the transition graph. Each cycle
// lists its states once, starting from its smallest state; a self-loop is a
// cycle of length one. Cycles are sorted lexicographically.
//
// The number of cycles grows quickly with the state count. If limit is
// positive, enumeration stops after limit cycles and truncated is true.
func Cycles(m *Matrix, limit int) (cycles [][]int, truncated bool) {
	next := successors(m)
	blocked := make([]bool, m.n)
	var path []int

	// Only states >= start may appear, so every cycle is found exactly once,
	// from its smallest state.
	var walk func(start, v int) bool
	walk = func(start, v int) bool {
		for _, w := range next[v] {
			switch {
			case w == start:
				cycles = append(cycles, append([]int(nil), path...))
				if limit > 0 && len(cycles) >= limit {
					return false
				}
			case w > start && !blocked[w]:
				blocked[w] = true
				path = append(path, w)
				ok := walk(start, w)
				path = path[:len(path)-1]
				blocked[w] = false
				if !ok {
					return false
				}
			}
		}
		return true
	}

	for start := range m.n {
		path = append(path[:0], start)
		blocked[start] = true
		ok := walk(start, start)
		blocked[start] = false
		if !ok {
			truncated = true
			break
		}
	}

	slices.SortFunc(cycles, slices.Compare)
	return cycles, truncated
}
