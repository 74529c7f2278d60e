package ruleset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Section headers of the text report. The spelling is part of the output
// format that downstream scripts match on.
const (
	adjacencyHeader  = " --- Adjency Matrix ---"
	transitionHeader = " --- Unomralized Transition Matrix ---"
)

// WriteReport writes the human-readable report:
//
//	Ruleset: 1 for 2 states
//	Update rules: [1,0,0,0,0,0,0,0]
//	 --- Adjency Matrix ---
//	00->|07,03,06,02|
//	...
//	 --- Unomralized Transition Matrix ---
//	00->|00,00,01,01,00,00,01,01|
//	...
//
// Row indices and entries are zero-padded to at least two digits.
func (r *Ruleset) WriteReport(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Ruleset: %d for %d states\n", r.rule, r.states)
	fmt.Fprintf(bw, "Update rules: [%s]\n", joinInts(r.upStates, false))

	fmt.Fprintln(bw, adjacencyHeader)
	writeRows(bw, r.adj)

	fmt.Fprintln(bw, transitionHeader)
	writeRows(bw, r.trans)

	return bw.Flush()
}

// String returns the report produced by WriteReport.
func (r *Ruleset) String() string {
	var b strings.Builder
	_ = r.WriteReport(&b)
	return b.String()
}

func writeRows(w io.Writer, rows [][]int) {
	for i, row := range rows {
		fmt.Fprintf(w, "%02d->|%s|\n", i, joinInts(row, true))
	}
}

func joinInts(vals []int, pad bool) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if pad {
			parts[i] = fmt.Sprintf("%02d", v)
		} else {
			parts[i] = strconv.Itoa(v)
		}
	}
	return strings.Join(parts, ",")
}
