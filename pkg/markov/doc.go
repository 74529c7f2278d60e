// Package markov analyzes a ruleset's transition matrix as a Markov chain
// over windows.
//
// A [Matrix] is built from integer transition counts with [FromCounts] and
// made row-stochastic with [Matrix.Normalize]. On top of it the package
// offers:
//
//   - diagnostics on the matrix and its powers ([Matrix.OnesOnDiagonal],
//     [Matrix.NoZeros], [Matrix.ColumnsUniform], ...)
//   - reachability and communicating classes ([Reachable],
//     [CommunicatingClasses])
//   - elementary cycle enumeration ([Cycles])
//   - a heuristic Wolfram classification ([Classify])
//
// Entries are compared with an absolute [Tolerance] of 0.01.
package markov
