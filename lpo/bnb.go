package lpo

// In-process MILP backend: depth-first branch-and-bound over the gonum
// simplex. Every node is an LP relaxation of the model with tightened column
// bounds. Relaxations are reduced to standard form by newStdForm and solved
// with lp.Simplex in a goroutine, so that a deadline can abandon a
// relaxation that is still running.

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Default limits used by BnbSolver when a field is left at zero.
const (
	DefaultIntTol   = 1e-6
	DefaultLpTol    = 1e-10
	DefaultMaxNodes = 100000
)

var (
	errNodeInfeasible = errors.New("node relaxation is infeasible")
	errNodeUnbounded  = errors.New("node relaxation is unbounded")
)

// simplex is the LP routine used for every relaxation.
var simplex simplexFunc = lp.Simplex

// BnbSolver solves models in process. Zero fields take the package defaults;
// a zero TimeLimit means the solver is bounded only by the context and
// MaxNodes, and a zero GapLimit means nodes are pruned only when they cannot
// improve on the incumbent.
type BnbSolver struct {
	TimeLimit time.Duration // wall-clock limit for the whole solve
	GapLimit  float64       // relative gap at which the search stops
	MaxNodes  int           // maximum number of relaxations solved
	IntTol    float64       // integrality tolerance
	LpTol     float64       // tolerance passed to the simplex routine
}

// bnbNode is an open subproblem. Bound is the relaxation value of the parent,
// expressed as a minimization, and bounds every point of the subproblem.
type bnbNode struct {
	lo, up []float64
	bound  float64
	depth  int
}

// Solve runs branch-and-bound on m. Limits reached with an incumbent give
// StatusFeasible, and limits reached without one give StatusNotSolved.
// In case of failure, function returns an error.
func (s *BnbSolver) Solve(ctx context.Context, m *Model) (*Soln, error) {
	intTol := valueOr(s.IntTol, DefaultIntTol)
	lpTol := valueOr(s.LpTol, DefaultLpTol)
	maxNodes := s.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	if s.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.TimeLimit)
		defer cancel()
	}

	soln := &Soln{Status: StatusNotSolved, Gap: math.NaN(), Solver: "bnb"}
	startTime := time.Now()

	work := m.Clone()
	if _, err := DelEmptyRows(work); err != nil {
		if errors.Is(err, errPresolveInfeasible) {
			soln.Status = StatusInfeasible
			return soln, nil
		}
		return nil, errors.Wrap(err, "BnbSolver failed in presolve")
	}

	// All objective values below are in minimization form.
	sense := 1.0
	if work.Maximize {
		sense = -1
	}

	rootLo := make([]float64, len(work.Cols))
	rootUp := make([]float64, len(work.Cols))
	for j, c := range work.Cols {
		rootLo[j], rootUp[j] = c.BndLo, c.BndUp
		if c.Type == ColInt {
			if rootLo[j] > -Plinfy {
				rootLo[j] = math.Ceil(rootLo[j] - intTol)
			}
			if rootUp[j] < Plinfy {
				rootUp[j] = math.Floor(rootUp[j] + intTol)
			}
		}
	}

	stack := []bnbNode{{lo: rootLo, up: rootUp, bound: math.Inf(-1)}}
	var incumbent []float64
	incumbentVal := math.Inf(1)
	prunedBound := math.Inf(1) // lowest bound among nodes pruned by the gap limit
	nodes := 0
	limitHit := false

	// prune reports whether a node with the given bound can be dropped, and
	// records the bound when the drop is due to the gap limit.
	prune := func(bound float64) bool {
		if incumbent == nil {
			return false
		}
		absTol := 1e-9 * math.Max(1, math.Abs(incumbentVal))
		if bound >= incumbentVal-absTol {
			return true
		}
		if s.GapLimit > 0 && bound >= incumbentVal-s.GapLimit*math.Abs(incumbentVal) {
			prunedBound = math.Min(prunedBound, bound)
			return true
		}
		return false
	}

	for len(stack) > 0 {
		if nodes >= maxNodes || ctx.Err() != nil {
			limitHit = true
			break
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if prune(node.bound) {
			continue
		}

		nodes++
		x, err := solveRelaxationCtx(ctx, work, node.lo, node.up, lpTol)
		switch {
		case ctx.Err() != nil && errors.Is(err, ctx.Err()):
			// The relaxation was abandoned, so the node stays open.
			log().Warn("branch-and-bound stopped during a relaxation", "node", nodes, "err", err)
			nodes--
			stack = append(stack, node)
			limitHit = true
		case errors.Is(err, errNodeInfeasible):
			continue
		case errors.Is(err, errNodeUnbounded):
			if nodes == 1 {
				soln.Status = StatusUnbounded
				soln.Nodes = nodes
				return soln, nil
			}
			// A bounded root cannot have unbounded children.
			return nil, errors.Errorf("BnbSolver found an unbounded relaxation at depth %d", node.depth)
		case err != nil:
			return nil, errors.Wrapf(err, "BnbSolver failed at node %d", nodes)
		}
		if limitHit {
			break
		}

		z := sense * work.ObjValue(x)
		if prune(z) {
			continue
		}

		j := branchColumn(work, x, intTol)
		if j < 0 {
			incumbent, incumbentVal = x, z
			log().Debug("new incumbent", "node", nodes, "obj", sense*z, "depth", node.depth)
			continue
		}

		down := bnbNode{lo: node.lo, up: cloneBounds(node.up), bound: z, depth: node.depth + 1}
		down.up[j] = math.Floor(x[j])
		up := bnbNode{lo: cloneBounds(node.lo), up: node.up, bound: z, depth: node.depth + 1}
		up.lo[j] = math.Ceil(x[j])

		// The child nearer to the relaxation value is explored first.
		if x[j]-math.Floor(x[j]) >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	soln.Nodes = nodes

	if incumbent == nil {
		if !limitHit {
			soln.Status = StatusInfeasible
		}
		log().Info("branch-and-bound finished", "status", soln.Status, "nodes", nodes,
			"elapsed", time.Since(startTime))
		return soln, nil
	}

	bestBound := math.Min(prunedBound, incumbentVal)
	if limitHit {
		soln.Status = StatusFeasible
		for _, n := range stack {
			bestBound = math.Min(bestBound, n.bound)
		}
	} else {
		soln.Status = StatusOptimal
	}
	soln.Gap = relGap(incumbentVal, bestBound)

	soln.Values = make([]float64, len(incumbent))
	for j, c := range work.Cols {
		v := incumbent[j]
		if c.Type == ColInt {
			v = math.Round(v)
		}
		soln.Values[j] = v
	}
	soln.ObjVal = work.ObjValue(soln.Values)

	log().Info("branch-and-bound finished", "status", soln.Status, "obj", soln.ObjVal,
		"gap", soln.Gap, "nodes", nodes, "elapsed", time.Since(startTime))
	return soln, nil
}

type relaxation struct {
	x   []float64
	err error
}

// solveRelaxationCtx runs solveRelaxation and returns early with the context
// error when ctx is done first. An abandoned relaxation finishes in the
// background and its result is discarded.
func solveRelaxationCtx(ctx context.Context, m *Model, lo, up []float64, tol float64) ([]float64, error) {
	lpSolve := simplex
	done := make(chan relaxation, 1)
	go func() {
		x, err := relax(lpSolve, m, lo, up, tol)
		done <- relaxation{x: x, err: err}
	}()

	select {
	case r := <-done:
		return r.x, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// solveRelaxation solves the LP relaxation of m with the given column bounds
// and returns the optimal point in model columns.
func solveRelaxation(m *Model, lo, up []float64, tol float64) ([]float64, error) {
	return relax(simplex, m, lo, up, tol)
}

type simplexFunc func(c []float64, a mat.Matrix, b []float64, tol float64, initialBasic []int) (float64, []float64, error)

func relax(lpSolve simplexFunc, m *Model, lo, up []float64, tol float64) ([]float64, error) {
	sf, err := newStdForm(m, lo, up, tol)
	switch {
	case errors.Is(err, errPresolveInfeasible):
		return nil, errNodeInfeasible
	case errors.Is(err, errPresolveUnbounded):
		return nil, errNodeUnbounded
	case err != nil:
		return nil, err
	}

	if sf.a == nil {
		// Presolve removed every row and column.
		return sf.recover(nil), nil
	}

	x, err := runSimplex(lpSolve, sf.c, sf.a, sf.b, tol)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return nil, errNodeInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return nil, errNodeUnbounded
	case err != nil:
		return nil, errors.Wrap(err, "simplex failed")
	}

	return sf.recover(x), nil
}

// runSimplex calls lpSolve and turns a panic of the routine, raised on a
// numerically singular basis, into an error.
func runSimplex(lpSolve simplexFunc, c []float64, a mat.Matrix, b []float64, tol float64) (x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			x, err = nil, errors.Errorf("simplex aborted: %v", r)
		}
	}()
	_, x, err = lpSolve(c, a, b, tol, nil)
	return x, err
}

// branchColumn returns the integer column whose value is most fractional, or
// -1 if every integer column is integral within tol. Ties go to the lowest
// index.
func branchColumn(m *Model, x []float64, tol float64) int {
	best := -1
	bestDist := math.Inf(1)
	for j := range m.Cols {
		if m.Cols[j].Type != ColInt {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		if frac <= tol || frac >= 1-tol {
			continue
		}
		if d := math.Abs(frac - 0.5); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func cloneBounds(b []float64) []float64 {
	return append([]float64(nil), b...)
}

func valueOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
