//go:build !cplex

package lpo

import "github.com/pkg/errors"

// NewGpxSolver reports that the in-process Cplex backend is not part of this
// build. Build with the "cplex" tag to enable it.
func NewGpxSolver(screen bool, solnFile string) (Solver, error) {
	return nil, errors.New("in-process cplex backend not built, rebuild with -tags cplex")
}
