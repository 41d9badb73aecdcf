package lpo

// presolve: reduction of a model, with bound overrides, to the standard form
// accepted by the simplex routine
//
//	minimize  c'x + objConst
//	s.t.      A x = b
//	          x >= 0
//
// The reduction turns singleton rows into column bounds, removes rows that
// cannot bind within the column bounds, removes fixed variables, empty rows
// and empty columns, shifts finite lower bounds to zero, splits free columns,
// adds explicit rows for finite upper bounds, and adds slack or surplus
// columns for inequalities.

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	errPresolveInfeasible = errors.New("presolve detected an infeasible model")
	errPresolveUnbounded  = errors.New("presolve detected an unbounded model")
)

// stdForm is a model reduced to standard form, together with the mapping
// needed to recover a point of the original model.
type stdForm struct {
	c        []float64
	a        *mat.Dense
	b        []float64
	objConst float64

	// Column j of the model equals shift[j] + sign[j]*x[pos[j]] - x[neg[j]],
	// where a negative index means the term is absent.
	pos   []int
	neg   []int
	sign  []float64
	shift []float64

	RowsDel int // empty, singleton or nonbinding rows removed
	ColsDel int // fixed or empty columns removed
}

// sparseRow is a row of the reduced model before densification. Indices refer
// to structural columns of the reduced model.
type sparseRow struct {
	idx  []int
	val  []float64
	typ  string
	rhs  float64
	name string
}

// newStdForm reduces m, using lo and up in place of the column bounds.
// In case of failure, function returns an error; errPresolveInfeasible and
// errPresolveUnbounded report a decided model.
func newStdForm(m *Model, lo, up []float64, tol float64) (*stdForm, error) {
	nCols := len(m.Cols)
	sf := &stdForm{
		pos:   make([]int, nCols),
		neg:   make([]int, nCols),
		sign:  make([]float64, nCols),
		shift: make([]float64, nCols),
	}

	lo, up, skip := reduceRows(m, lo, up, tol)

	objSign := 1.0
	if m.Maximize {
		objSign = -1
	}
	cost := make([]float64, nCols)
	for _, t := range m.Obj {
		cost[t.Col] += objSign * t.Coef
	}
	sf.objConst = objSign * m.ObjConst

	// Map model columns to structural columns of the reduced model.
	var structCost []float64
	var boundRows []sparseRow
	for j := 0; j < nCols; j++ {
		sf.pos[j], sf.neg[j], sf.sign[j] = -1, -1, 1

		switch {
		case lo[j] > up[j]+tol:
			return nil, errors.Wrapf(errPresolveInfeasible, "column %s has empty bounds", m.Cols[j].Name)

		case up[j]-lo[j] <= tol:
			// Fixed variable.
			sf.shift[j] = lo[j]
			sf.ColsDel++

		case lo[j] > -Plinfy:
			sf.shift[j] = lo[j]
			sf.pos[j] = len(structCost)
			structCost = append(structCost, cost[j])
			if up[j] < Plinfy {
				boundRows = append(boundRows, sparseRow{
					idx:  []int{sf.pos[j]},
					val:  []float64{1},
					typ:  RowL,
					rhs:  up[j] - lo[j],
					name: "bnd_" + m.Cols[j].Name,
				})
			}

		case up[j] < Plinfy:
			sf.shift[j] = up[j]
			sf.sign[j] = -1
			sf.pos[j] = len(structCost)
			structCost = append(structCost, -cost[j])

		default:
			sf.pos[j] = len(structCost)
			structCost = append(structCost, cost[j])
			sf.neg[j] = len(structCost)
			structCost = append(structCost, -cost[j])
		}
		sf.objConst += cost[j] * sf.shift[j]
	}

	// Substitute the column mapping into every row, dropping empty rows.
	rows := make([]sparseRow, 0, len(m.Rows)+len(boundRows))
	for i := range m.Rows {
		if skip[i] {
			sf.RowsDel++
			continue
		}
		row := m.Rows[i]
		sr := sparseRow{typ: row.Type, rhs: row.Rhs, name: row.Name}
		for _, e := range row.HasElems {
			el := m.Elems[e]
			j := el.InCol
			sr.rhs -= el.Value * sf.shift[j]
			if sf.pos[j] >= 0 {
				sr.idx = append(sr.idx, sf.pos[j])
				sr.val = append(sr.val, sf.sign[j]*el.Value)
			}
			if sf.neg[j] >= 0 {
				sr.idx = append(sr.idx, sf.neg[j])
				sr.val = append(sr.val, -el.Value)
			}
		}

		if len(sr.idx) == 0 {
			if !emptyRowFeasible(sr, tol) {
				return nil, errors.Wrapf(errPresolveInfeasible, "empty row %s cannot hold", row.Name)
			}
			sf.RowsDel++
			continue
		}
		rows = append(rows, sr)
	}
	rows = append(rows, boundRows...)

	// Drop structural columns that appear in no row. A column whose cost
	// improves without limit makes the model unbounded.
	used := make([]bool, len(structCost))
	for _, r := range rows {
		for _, k := range r.idx {
			used[k] = true
		}
	}
	remap := make([]int, len(structCost))
	nStruct := 0
	for k := range structCost {
		if !used[k] {
			if structCost[k] < -tol {
				return nil, errPresolveUnbounded
			}
			remap[k] = -1
			sf.ColsDel++
			continue
		}
		remap[k] = nStruct
		nStruct++
	}
	for j := 0; j < nCols; j++ {
		if sf.pos[j] >= 0 {
			sf.pos[j] = remap[sf.pos[j]]
		}
		if sf.neg[j] >= 0 {
			sf.neg[j] = remap[sf.neg[j]]
		}
	}

	// Count slack and surplus columns.
	nSlack := 0
	for _, r := range rows {
		if r.typ != RowE {
			nSlack++
		}
	}

	nRows := len(rows)
	nStd := nStruct + nSlack
	if nRows == 0 {
		return sf, nil
	}
	if nRows > nStd {
		return nil, errors.Errorf("reduced model has %d rows but only %d columns", nRows, nStd)
	}

	sf.c = make([]float64, nStd)
	for k, c := range structCost {
		if remap[k] >= 0 {
			sf.c[remap[k]] = c
		}
	}
	sf.b = make([]float64, nRows)
	sf.a = mat.NewDense(nRows, nStd, nil)

	slack := nStruct
	for i, r := range rows {
		for n, k := range r.idx {
			col := remap[k]
			sf.a.Set(i, col, sf.a.At(i, col)+r.val[n])
		}
		sf.b[i] = r.rhs
		switch r.typ {
		case RowL:
			sf.a.Set(i, slack, 1)
			slack++
		case RowG:
			sf.a.Set(i, slack, -1)
			slack++
		}
	}

	return sf, nil
}

// reduceRows returns copies of lo and up tightened by the singleton rows of m,
// and marks the rows that can be skipped: the singleton rows themselves and
// the inequalities that hold at every point within the tightened bounds.
// Empty rows are left to the caller.
func reduceRows(m *Model, lo, up []float64, tol float64) ([]float64, []float64, []bool) {
	lo, up = cloneBounds(lo), cloneBounds(up)
	skip := make([]bool, len(m.Rows))

	for i := range m.Rows {
		row := &m.Rows[i]
		if len(row.HasElems) != 1 {
			continue
		}
		el := m.Elems[row.HasElems[0]]
		if math.Abs(el.Value) <= tol {
			continue
		}

		j, v := el.InCol, row.Rhs/el.Value
		typ := row.Type
		if el.Value < 0 {
			switch typ {
			case RowL:
				typ = RowG
			case RowG:
				typ = RowL
			}
		}
		if typ != RowG {
			up[j] = math.Min(up[j], v)
		}
		if typ != RowL {
			lo[j] = math.Max(lo[j], v)
		}
		skip[i] = true
	}

	for i := range m.Rows {
		row := &m.Rows[i]
		if skip[i] || row.Type == RowE || len(row.HasElems) == 0 {
			continue
		}
		minAct, maxAct := rowActivity(m, row, lo, up)
		if (row.Type == RowL && maxAct <= row.Rhs) || (row.Type == RowG && minAct >= row.Rhs) {
			skip[i] = true
		}
	}

	return lo, up, skip
}

// rowActivity returns the least and greatest value of the row's left-hand
// side within the column bounds. Infinite bounds give infinite activity.
func rowActivity(m *Model, row *InputRow, lo, up []float64) (float64, float64) {
	var minAct, maxAct float64
	for _, e := range row.HasElems {
		el := m.Elems[e]
		l, u := infBound(lo[el.InCol]), infBound(up[el.InCol])
		if el.Value > 0 {
			minAct += el.Value * l
			maxAct += el.Value * u
		} else {
			minAct += el.Value * u
			maxAct += el.Value * l
		}
	}
	return minAct, maxAct
}

func infBound(v float64) float64 {
	switch {
	case v >= Plinfy:
		return math.Inf(1)
	case v <= -Plinfy:
		return math.Inf(-1)
	}
	return v
}

// recover maps a standard-form point back to the model's columns. A nil x
// means every standard-form variable is zero.
func (sf *stdForm) recover(x []float64) []float64 {
	out := make([]float64, len(sf.shift))
	for j := range out {
		v := sf.shift[j]
		if x != nil {
			if sf.pos[j] >= 0 {
				v += sf.sign[j] * x[sf.pos[j]]
			}
			if sf.neg[j] >= 0 {
				v -= x[sf.neg[j]]
			}
		}
		out[j] = v
	}
	return out
}

func emptyRowFeasible(r sparseRow, tol float64) bool {
	switch r.typ {
	case RowL:
		return r.rhs >= -tol
	case RowG:
		return r.rhs <= tol
	default:
		return math.Abs(r.rhs) <= tol
	}
}

//==============================================================================

// DelEmptyRows removes the rows of m that have no elements, and returns the
// number of rows removed. An empty row whose right-hand side cannot hold makes
// the model infeasible.
// In case of failure, function returns an error.
func DelEmptyRows(m *Model) (int, error) {
	newIndex := make([]int, len(m.Rows))
	kept := m.Rows[:0:0]
	numDltd := 0

	for i := range m.Rows {
		row := m.Rows[i]
		if len(row.HasElems) > 0 {
			newIndex[i] = len(kept)
			kept = append(kept, row)
			continue
		}

		sr := sparseRow{typ: row.Type, rhs: row.Rhs}
		if !emptyRowFeasible(sr, 0) {
			return 0, errors.Wrapf(errPresolveInfeasible, "empty row %s has type %s and rhs %g",
				row.Name, row.Type, row.Rhs)
		}
		newIndex[i] = -1
		numDltd++
		log().Debug("row removed", "row", row.Name)
	}

	if numDltd == 0 {
		return 0, nil
	}

	for e := range m.Elems {
		m.Elems[e].InRow = newIndex[m.Elems[e].InRow]
	}
	m.Rows = kept
	m.rowIndex = make(map[string]int, len(kept))
	for i := range m.Rows {
		m.rowIndex[m.Rows[i].Name] = i
	}

	log().Info("deleted empty rows", "count", numDltd)
	return numDltd, nil
}
