package markov

// DefaultSteps is the power the transition matrix is raised to before its
// long-run shape is inspected.
const DefaultSteps = 51

// Wolfram classes as assigned by Classify. Unclassified means none of the
// heuristics matched.
const (
	Unclassified = 0
	Homogeneous  = 1 // evolves to a single absorbing window
	Periodic     = 2 // long-run matrix keeps structural zeros
	Chaotic      = 3 // long-run matrix is uniform
	Complex      = 4 // long-run rows agree but are not uniform
)

// ClassName returns a short label for a Wolfram class number.
func ClassName(class int) string {
	switch class {
	case Homogeneous:
		return "homogeneous"
	case Periodic:
		return "periodic"
	case Chaotic:
		return "chaotic"
	case Complex:
		return "complex"
	default:
		return "unclassified"
	}
}

// Classification is the diagnostic summary of a transition matrix.
type Classification struct {
	Class           int  `json:"class"`
	Steps           int  `json:"steps"`
	OnesOnDiagonal  int  `json:"ones_on_diagonal"`
	OnesOffDiagonal int  `json:"ones_off_diagonal"`
	PowerOnes       int  `json:"power_ones_on_diagonal"`
	NoZeros         bool `json:"no_zeros"`
	ColumnsUniform  bool `json:"columns_uniform"`
	CellsUniform    bool `json:"cells_uniform"`
}

// Name returns the label of the assigned class.
func (c Classification) Name() string { return ClassName(c.Class) }

// Classify normalizes a transition count matrix, raises it to the given
// power and assigns a Wolfram class from the shape of the result. Steps
// below one fall back to DefaultSteps.
//
// The checks apply in order:
//   - exactly one absorbing window: Homogeneous
//   - the power is uniform in every cell: Chaotic
//   - the power has no zeros and identical rows: Complex
//   - the power still has zeros: Periodic
func Classify(counts [][]int, steps int) Classification {
	if steps < 1 {
		steps = DefaultSteps
	}
	p := FromCounts(counts).Normalize()
	pow := p.Pow(steps)

	c := Classification{
		Steps:           steps,
		OnesOnDiagonal:  p.OnesOnDiagonal(),
		OnesOffDiagonal: p.OnesOffDiagonal(),
		PowerOnes:       pow.OnesOnDiagonal(),
		NoZeros:         pow.NoZeros(),
		ColumnsUniform:  pow.ColumnsUniform(),
		CellsUniform:    pow.CellsUniform(),
	}

	switch {
	case c.OnesOnDiagonal == 1:
		c.Class = Homogeneous
	case c.CellsUniform:
		c.Class = Chaotic
	case c.NoZeros && c.ColumnsUniform:
		c.Class = Complex
	case !c.NoZeros:
		c.Class = Periodic
	}
	return c
}
