// Package ruleset decomposes a cellular automaton rule number into its update
// table and derives how three-cell windows map onto each other in one step.
//
// # Overview
//
// A one-dimensional automaton with S cell states and neighbour range 1 looks
// at windows of three cells. There are S^3 such windows; a rule number
// written in base S with S^3 digits assigns each window the state its center
// cell takes next. Rule 110 for S = 2 is the familiar elementary automaton.
//
// Windows are identified by their index: the cell states (d0, d1, d2) are
// the base-S digits of the index, least significant first, with d1 the
// center cell.
//
// # Matrices
//
// [New] builds three structures, all fixed for the lifetime of the value:
//
//   - the update table: [Ruleset.UpState] of window i is digit i of the rule
//   - the adjacency matrix: for each window, the S*S windows its three cells
//     can become after one step, one per choice of the two unknown cells
//     just outside it ([Ruleset.Adjacency])
//   - the transition matrix: entry (i, j) counts how often j occurs in the
//     adjacency list of i ([Ruleset.Transitions])
//
// Every row of the transition matrix sums to S*S. Construction verifies this
// and fails with an OVERFILL error if it does not hold.
//
// # Successor convention
//
// For window (d0, d1, d2) and outer cells a and b, the successor window is
//
//	(f(a, d0, d1), f(d0, d1, d2), f(d1, d2, b))
//
// where f is the update table applied to a window given by its cells. The
// center of every successor is the update value of the window itself.
//
// # Validation
//
// A rule is valid when it fits in S^3 base-S digits. The check is exact
// integer arithmetic, so rules at exact powers of S are classified correctly.
// Rule 0 is valid for every state count.
//
// # Report
//
// [Ruleset.WriteReport] renders the rule, update table and both matrices in
// a fixed line-oriented text format used by the report command.
package ruleset
