package sketch

// DofStatus summarizes how constrained a sketch is.
type DofStatus int

const (
	UnderConstrained DofStatus = iota
	FullyConstrained
	OverConstrained
)

func (d DofStatus) String() string {
	switch d {
	case UnderConstrained:
		return "under-constrained"
	case FullyConstrained:
		return "fully-constrained"
	case OverConstrained:
		return "over-constrained"
	default:
		return "unknown"
	}
}

// Analysis is the degree-of-freedom count of a sketch. The count is
// purely arithmetic: redundant constraints still count as equations,
// so a sketch reported over-constrained may still be solvable.
type Analysis struct {
	Variables int
	Equations int
	DOF       int
	Status    DofStatus
}

// Analyze counts free coordinates against constraint equations.
func (s *Sketch) Analyze() Analysis {
	vars := 0
	for _, p := range s.Points {
		if !p.Fixed {
			vars += 2
		}
	}
	eqs := 0
	for _, c := range s.Constraints {
		eqs += c.Arity(s)
	}
	a := Analysis{Variables: vars, Equations: eqs, DOF: vars - eqs}
	switch {
	case a.DOF > 0:
		a.Status = UnderConstrained
	case a.DOF < 0:
		a.Status = OverConstrained
	default:
		a.Status = FullyConstrained
	}
	return a
}
