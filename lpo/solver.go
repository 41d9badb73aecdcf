package lpo

import (
	"context"
	"math"
)

// Status is the outcome of a solve.
type Status int

const (
	// StatusOptimal means the solution is optimal within the gap limit.
	StatusOptimal Status = iota
	// StatusFeasible means a limit stopped the solver with an incumbent.
	StatusFeasible
	// StatusInfeasible means the model has no feasible point.
	StatusInfeasible
	// StatusUnbounded means the objective can be improved without limit.
	StatusUnbounded
	// StatusNotSolved means a limit stopped the solver before any incumbent.
	StatusNotSolved
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusNotSolved:
		return "not solved"
	default:
		return "unknown"
	}
}

// HasSolution reports whether a solution with this status carries values.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Soln is the result of a solve. Values holds one value per model column and
// is nil unless Status.HasSolution() is true.
type Soln struct {
	Status Status
	ObjVal float64 // objective value in the model's own sense
	Gap    float64 // relative optimality gap, NaN when the solver does not report it
	Values []float64
	Nodes  int    // branch-and-bound nodes processed, 0 if not reported
	Solver string // name of the backend that produced the solution
}

// Value returns the value of the named column, and false if the column does
// not exist or the solution carries no values.
func (s *Soln) Value(m *Model, name string) (float64, bool) {
	if s == nil || s.Values == nil {
		return 0, false
	}
	j, ok := m.ColIndex(name)
	if !ok {
		return 0, false
	}
	return s.Values[j], true
}

// Solver solves a model. Infeasible, unbounded and limit outcomes are reported
// through Soln.Status; an error means the solver itself failed.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Soln, error)
}

// relGap returns the relative gap between an incumbent and a bound.
func relGap(incumbent, bound float64) float64 {
	if math.IsInf(bound, 0) {
		return math.Inf(1)
	}
	return math.Abs(incumbent-bound) / math.Max(1e-10, math.Abs(incumbent))
}
