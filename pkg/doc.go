// Package pkg provides the core libraries for rulegraph.
//
// # Overview
//
// rulegraph studies one-dimensional cellular automaton rules as Markov
// chains. A rule with S states updates every three-cell window to a new
// center state. Each window has S² possible successor windows, and the
// counts of those transitions form a matrix that can be normalized,
// classified and drawn. The pkg directory is organized as follows:
//
//  1. [ruleset] - Rule decoding, window adjacency and the transition matrix
//  2. [markov] - Stochastic matrices, reachability, cycles and classification
//  3. [render] - Graphviz output of the transition graph
//  4. [pipeline] - Orchestration (build → analyze → render, sweeps)
//  5. [cache], [store] - Caching of derived artifacts and storage of sweeps
//  6. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	(rule, states)
//	     ↓
//	[ruleset] package (update table + transition counts)
//	     ↓
//	[markov] package (normalize, classify, find cycles)
//	     ↓
//	[render/nodelink] package (DOT / SVG)
//
// # Quick Start
//
//	rs, err := ruleset.New(110, 2)
//	if err != nil {
//	    return err
//	}
//	rs.WriteReport(os.Stdout)
//
//	c := markov.Classify(rs.Transitions(), markov.DefaultSteps)
//	fmt.Println(c.Name()) // "complex"
//
//	dot := nodelink.ToDOT(rs, nodelink.Options{Probabilities: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Main Packages
//
// [digits] - Base-S digit expansion with a fixed width, used to decode rule
// numbers and window indices.
//
// [errors] - Coded errors shared by every layer. The CLI prints the user
// message and the server maps codes to HTTP status codes.
//
// [config] - TOML configuration for the CLI and the server.
//
// [io] - JSON import and export of rulesets.
//
// [observability] - Hooks for engine, cache and HTTP events with a
// Prometheus implementation.
//
// # Testing
//
//	go test ./...            # All tests
//	go test ./pkg/markov/... # Specific package
//	go test -run Example     # Examples only
//
// [ruleset]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/ruleset
// [markov]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/markov
// [render]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/server
// [digits]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/digits
// [errors]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/errors
// [config]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/rulegraph/pkg/observability
package pkg
