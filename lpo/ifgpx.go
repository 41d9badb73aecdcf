//go:build cplex

//==============================================================================
// ifgpx: Interface Functions for GPX
// 01   Oct. 18, 2026   In-process Cplex backend through gpx

// Any function which makes use of the gpx package is in this file, so that the
// rest of lpo does not depend on gpx. The file is only compiled with the
// "cplex" build tag, on a machine where Cplex and gpx are installed.

package lpo

import (
	"context"
	"math"
	"time"

	"github.com/go-opt/gpx"
	"github.com/pkg/errors"
)

// cpxInfBound is the magnitude Cplex treats as an infinite bound.
const cpxInfBound = 1e20

// GpxSolver solves models with Cplex in process. Cplex keeps one problem per
// process, so a GpxSolver must not be used concurrently.
type GpxSolver struct {
	Screen   bool   // echo Cplex output to the screen
	SolnFile string // xml solution file written after the solve, none when empty
}

// NewGpxSolver returns the in-process Cplex backend.
func NewGpxSolver(screen bool, solnFile string) (Solver, error) {
	return &GpxSolver{Screen: screen, SolnFile: solnFile}, nil
}

// TransToGpx translates the model to the gpx data structures. The objective
// is negated when the model maximizes, since gpx always minimizes.
// In case of failure, function returns an error.
//
//	The values returned are:
//	   gRows: rows of the model
//	   gCols: columns of the model
//	   gElem: non-zero elements present in the gRows list
//	   gObj:  non-zero elements present in the objective function
func TransToGpx(m *Model) (gRows []gpx.InputRow, gCols []gpx.InputCol,
	gElem []gpx.InputElem, gObj []gpx.InputObjCoef, err error) {

	if len(m.Rows) == 0 {
		return nil, nil, nil, nil, errors.Errorf("Input list of rows is empty")
	}
	if len(m.Cols) == 0 {
		return nil, nil, nil, nil, errors.Errorf("Input list of columns is empty")
	}

	for j := range m.Cols {
		colItem := gpx.InputCol{
			Name:  m.Cols[j].Name,
			BndLo: math.Max(m.Cols[j].BndLo, -cpxInfBound),
			BndUp: math.Min(m.Cols[j].BndUp, cpxInfBound),
		}

		switch m.Cols[j].Type {
		case ColReal:
			colItem.Type = "C"
		case ColInt:
			colItem.Type = "I"
		default:
			return nil, nil, nil, nil, errors.Errorf("Unexpected type %s in col %s",
				m.Cols[j].Type, m.Cols[j].Name)
		}
		gCols = append(gCols, colItem)
	}

	for i := range m.Rows {
		gRows = append(gRows, gpx.InputRow{
			Name:   m.Rows[i].Name,
			Sense:  m.Rows[i].Type,
			Rhs:    m.Rows[i].Rhs,
			RngVal: 0.0,
		})
		for _, e := range m.Rows[i].HasElems {
			gElem = append(gElem, gpx.InputElem{
				RowIndex: i,
				ColIndex: m.Elems[e].InCol,
				Value:    m.Elems[e].Value,
			})
		}
	}

	objSign := 1.0
	if m.Maximize {
		objSign = -1
	}
	for _, t := range m.Obj {
		gObj = append(gObj, gpx.InputObjCoef{ColIndex: t.Col, Value: objSign * t.Coef})
	}

	return gRows, gCols, gElem, gObj, nil
}

// Solve builds the model in Cplex, optimizes it and reads the solution back.
// Cplex runs to completion; the context is only checked before the solve.
// No time or gap limit is set, so a solution read back is optimal. When Cplex
// reports that no solution exists, the status is infeasible, unbounded or not
// solved instead of an error.
// In case of failure, function returns an error.
func (s *GpxSolver) Solve(ctx context.Context, m *Model) (*Soln, error) {
	var objVal float64      // objective value returned by Cplex
	var sRows []gpx.SolnRow // solved constraints returned by Cplex via gpx
	var sCols []gpx.SolnCol // solved variables returned by Cplex via gpx

	if err := ctx.Err(); err != nil {
		return &Soln{Status: StatusNotSolved, Gap: math.NaN(), Solver: "gpx"}, nil
	}

	gRows, gCols, gElem, gObj, err := TransToGpx(m)
	if err != nil {
		return nil, errors.Wrap(err, "GpxSolver failed to translate to gpx data structures")
	}

	if err = gpx.CreateProb(m.Name); err != nil {
		return nil, errors.Wrap(err, "GpxSolver failed to create problem")
	}
	defer func() {
		if err := gpx.CloseCplex(); err != nil {
			log().Warn("failed to close cplex", "err", err)
		}
	}()

	if s.Screen {
		if err = gpx.OutputToScreen(true); err != nil {
			return nil, errors.Wrap(err, "GpxSolver failed to set output to screen")
		}
	}
	if err = gpx.NewRows(gRows); err != nil {
		return nil, errors.Wrap(err, "GpxSolver failed to create rows")
	}
	if err = gpx.NewCols(gObj, gCols); err != nil {
		return nil, errors.Wrap(err, "GpxSolver failed to create columns")
	}
	if err = gpx.ChgCoefList(gElem); err != nil {
		return nil, errors.Wrap(err, "GpxSolver failed to create elements")
	}

	startTime := time.Now()
	if m.IsMip() {
		if err = gpx.MipOpt(); err != nil {
			return gpxNoSoln(err, "GpxSolver failed to optimize MIP")
		}
		if err = gpx.GetMipSolution(&objVal, &sRows, &sCols); err != nil {
			return gpxNoSoln(err, "GpxSolver failed to get solution")
		}
	} else {
		if err = gpx.LpOpt(); err != nil {
			return gpxNoSoln(err, "GpxSolver failed to optimize LP")
		}
		if err = gpx.GetSolution(&objVal, &sRows, &sCols); err != nil {
			return gpxNoSoln(err, "GpxSolver failed to get solution")
		}
	}
	log().Info("cplex finished", "elapsed", time.Since(startTime), "rows", len(sRows))

	if s.SolnFile != "" {
		if err = gpx.SolWrite(s.SolnFile); err != nil {
			return nil, errors.Wrap(err, "GpxSolver failed to write solution to file")
		}
	}

	values := make([]float64, len(m.Cols))
	for _, c := range sCols {
		j, ok := m.ColIndex(c.Name)
		if !ok {
			return nil, errors.Errorf("cplex returned unknown column %s", c.Name)
		}
		values[j] = c.Value
	}

	return &Soln{
		Status: StatusOptimal,
		ObjVal: m.ObjValue(values),
		Gap:    math.NaN(),
		Values: values,
		Solver: "gpx",
	}, nil
}

// gpxNoSoln returns the status carried by a Cplex error, or the wrapped error
// when it carries none.
func gpxNoSoln(err error, msg string) (*Soln, error) {
	if soln, ok := cplexErrStatus(err, "gpx"); ok {
		log().Warn("cplex found no solution", "status", soln.Status, "err", err)
		return soln, nil
	}
	return nil, errors.Wrap(err, msg)
}
