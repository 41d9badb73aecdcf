//==============================================================================
// lpo: Linear Programming Object
// 01   Oct. 18, 2026   Row/column/element model object for MILP formulations

// The model object stores an LP or MILP as a list of rows (constraints),
// columns (variables) and non-zero elements. Each row and column keeps the
// list of element indices it participates in, so that either view of the
// matrix can be walked without rebuilding it.

package lpo

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Plinfy is the value treated as plus infinity for bounds. Any bound whose
// magnitude is at least Plinfy is considered infinite.
const Plinfy = 1e30

// Row types, as used in MPS files.
const (
	RowL = "L" // less than or equal
	RowE = "E" // equality
	RowG = "G" // greater than or equal
)

// Column types. Binary variables are integer columns with bounds [0, 1].
const (
	ColReal = "R"
	ColInt  = "I"
)

// InputRow is a single constraint of the model.
type InputRow struct {
	Name     string  // Row name
	Type     string  // Row type: L, E or G
	Rhs      float64 // Right-hand side
	HasElems []int   // Indices into Elems of the non-zero coefficients in this row
}

// InputCol is a single variable of the model. Base and Index carry the
// identity of the variable (e.g. "x" and [2, 5] for x[2,5]).
type InputCol struct {
	Name     string  // Column name, rendered from Base and Index
	Base     string  // Base name of the variable family
	Index    []int   // Index tuple within the family, empty for scalars
	Type     string  // Column type: R or I
	BndLo    float64 // Lower bound
	BndUp    float64 // Upper bound
	HasElems []int   // Indices into Elems of the non-zero coefficients in this column
}

// InputElem is a non-zero coefficient of the constraint matrix.
type InputElem struct {
	InRow int     // Row index
	InCol int     // Column index
	Value float64 // Coefficient value
}

// Model is an LP or MILP. The objective is stored separately from the rows.
type Model struct {
	Name     string
	Maximize bool
	Rows     []InputRow
	Cols     []InputCol
	Elems    []InputElem
	Obj      []Term  // Objective coefficients
	ObjConst float64 // Constant added to the objective

	colIndex map[string]int
	rowIndex map[string]int
}

// pkgLogger is used by the package when set through SetLogger.
var pkgLogger *slog.Logger

// SetLogger sets the logger used by the package. A nil logger restores the
// slog default.
func SetLogger(l *slog.Logger) {
	pkgLogger = l
}

func log() *slog.Logger {
	if pkgLogger != nil {
		return pkgLogger
	}
	return slog.Default()
}

//==============================================================================
// MODEL CONSTRUCTION
//==============================================================================

// NewModel returns an empty model with the given name.
func NewModel(name string) *Model {
	return &Model{
		Name:     name,
		colIndex: make(map[string]int),
		rowIndex: make(map[string]int),
	}
}

// ColName renders the name of a variable from its base name and index tuple,
// e.g. ColName("G", 1, 3) is "G[1,3]" and ColName("R") is "R".
func ColName(base string, index ...int) string {
	if len(index) == 0 {
		return base
	}
	parts := make([]string, len(index))
	for i, v := range index {
		parts[i] = strconv.Itoa(v)
	}
	return base + "[" + strings.Join(parts, ",") + "]"
}

// AddCol adds a variable and returns its column index.
// In case of failure, function returns an error.
func (m *Model) AddCol(base string, index []int, colType string, lo, up float64) (int, error) {
	if colType != ColReal && colType != ColInt {
		return -1, errors.Errorf("unexpected type %s for column %s", colType, ColName(base, index...))
	}
	if lo > up {
		return -1, errors.Errorf("column %s has lower bound %g above upper bound %g",
			ColName(base, index...), lo, up)
	}

	name := ColName(base, index...)
	if _, ok := m.colIndex[name]; ok {
		return -1, errors.Errorf("duplicate column %s", name)
	}

	idx := make([]int, len(index))
	copy(idx, index)

	m.Cols = append(m.Cols, InputCol{
		Name:  name,
		Base:  base,
		Index: idx,
		Type:  colType,
		BndLo: lo,
		BndUp: up,
	})
	m.colIndex[name] = len(m.Cols) - 1

	return len(m.Cols) - 1, nil
}

// AddConstr adds the row "lhs sense rhs". Both sides may contain variables
// and constants; variables are moved to the left and constants to the right.
// In case of failure, function returns an error.
func (m *Model) AddConstr(name string, lhs *Expr, sense string, rhs *Expr) (int, error) {
	if sense != RowL && sense != RowE && sense != RowG {
		return -1, errors.Errorf("unexpected type %s in row %s", sense, name)
	}
	if _, ok := m.rowIndex[name]; ok {
		return -1, errors.Errorf("duplicate row %s", name)
	}

	row := NewExpr()
	row.AddExpr(lhs, 1)
	row.AddExpr(rhs, -1)

	for _, t := range row.Terms {
		if t.Col < 0 || t.Col >= len(m.Cols) {
			return -1, errors.Errorf("row %s references unknown column %d", name, t.Col)
		}
	}

	rowIdx := len(m.Rows)
	m.Rows = append(m.Rows, InputRow{Name: name, Type: sense, Rhs: -row.Const})
	for _, t := range row.Terms {
		m.Elems = append(m.Elems, InputElem{InRow: rowIdx, InCol: t.Col, Value: t.Coef})
		m.Rows[rowIdx].HasElems = append(m.Rows[rowIdx].HasElems, len(m.Elems)-1)
		m.Cols[t.Col].HasElems = append(m.Cols[t.Col].HasElems, len(m.Elems)-1)
	}
	m.rowIndex[name] = rowIdx

	return rowIdx, nil
}

// SetObjective sets the objective function and its direction.
func (m *Model) SetObjective(obj *Expr, maximize bool) {
	e := NewExpr()
	e.AddExpr(obj, 1)
	m.Obj = e.Terms
	m.ObjConst = e.Const
	m.Maximize = maximize
}

//==============================================================================
// LOOKUP AND EVALUATION
//==============================================================================

// ColIndex returns the index of the named column.
func (m *Model) ColIndex(name string) (int, bool) {
	i, ok := m.colIndex[name]
	return i, ok
}

// RowIndex returns the index of the named row.
func (m *Model) RowIndex(name string) (int, bool) {
	i, ok := m.rowIndex[name]
	return i, ok
}

// IsMip reports whether the model has any integer columns.
func (m *Model) IsMip() bool {
	for i := range m.Cols {
		if m.Cols[i].Type == ColInt {
			return true
		}
	}
	return false
}

// ObjValue returns the objective value at the point, including the constant.
func (m *Model) ObjValue(point []float64) float64 {
	z := m.ObjConst
	for _, t := range m.Obj {
		z += t.Coef * point[t.Col]
	}
	return z
}

// CalcLhs returns the value of the left-hand side of row rowIdx at the point,
// which must hold one value per column.
// In case of failure, function returns an error.
func (m *Model) CalcLhs(rowIdx int, point []float64) (float64, error) {
	if rowIdx < 0 || rowIdx >= len(m.Rows) {
		return 0, errors.Errorf("row index %d out of range", rowIdx)
	}
	if len(point) != len(m.Cols) {
		return 0, errors.Errorf("point has %d values, model has %d columns", len(point), len(m.Cols))
	}

	lhs := 0.0
	for _, e := range m.Rows[rowIdx].HasElems {
		lhs += m.Elems[e].Value * point[m.Elems[e].InCol]
	}
	return lhs, nil
}

// CalcConViolation returns by how much row rowIdx is violated at the point.
// A satisfied row returns 0. For equality rows the absolute residual is used.
// In case of failure, function returns an error.
func (m *Model) CalcConViolation(rowIdx int, point []float64) (float64, error) {
	lhs, err := m.CalcLhs(rowIdx, point)
	if err != nil {
		return 0, errors.Wrap(err, "CalcConViolation failed")
	}

	row := m.Rows[rowIdx]
	switch row.Type {
	case RowL:
		return math.Max(0, lhs-row.Rhs), nil
	case RowG:
		return math.Max(0, row.Rhs-lhs), nil
	default:
		return math.Abs(lhs - row.Rhs), nil
	}
}

// Residuals returns lhs - rhs for every row at the point.
// In case of failure, function returns an error.
func (m *Model) Residuals(point []float64) ([]float64, error) {
	res := make([]float64, len(m.Rows))
	for i := range m.Rows {
		lhs, err := m.CalcLhs(i, point)
		if err != nil {
			return nil, errors.Wrap(err, "Residuals failed")
		}
		res[i] = lhs - m.Rows[i].Rhs
	}
	return res, nil
}

// CheckPoint returns an error naming the first row or bound violated by more
// than tol at the point, or nil if the point is feasible.
func (m *Model) CheckPoint(point []float64, tol float64) error {
	for j, c := range m.Cols {
		if point[j] < c.BndLo-tol || point[j] > c.BndUp+tol {
			return errors.Errorf("column %s = %g outside [%g, %g]", c.Name, point[j], c.BndLo, c.BndUp)
		}
		if c.Type == ColInt && math.Abs(point[j]-math.Round(point[j])) > tol {
			return errors.Errorf("integer column %s = %g is fractional", c.Name, point[j])
		}
	}
	for i := range m.Rows {
		viol, err := m.CalcConViolation(i, point)
		if err != nil {
			return err
		}
		if viol > tol {
			return errors.Errorf("row %s violated by %g", m.Rows[i].Name, viol)
		}
	}
	return nil
}

// AsMinimization returns a copy of the model whose objective is negated when
// the model maximizes, so that solvers without a sense switch can process it.
// The returned flag reports whether the objective was negated.
func (m *Model) AsMinimization() (*Model, bool) {
	if !m.Maximize {
		return m, false
	}
	cp := *m
	cp.Obj = make([]Term, len(m.Obj))
	for i, t := range m.Obj {
		cp.Obj[i] = Term{Col: t.Col, Coef: -t.Coef}
	}
	cp.ObjConst = -m.ObjConst
	cp.Maximize = false
	return &cp, true
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	cp := &Model{
		Name:     m.Name,
		Maximize: m.Maximize,
		Rows:     make([]InputRow, len(m.Rows)),
		Cols:     make([]InputCol, len(m.Cols)),
		Elems:    append([]InputElem(nil), m.Elems...),
		Obj:      append([]Term(nil), m.Obj...),
		ObjConst: m.ObjConst,
		colIndex: make(map[string]int, len(m.Cols)),
		rowIndex: make(map[string]int, len(m.Rows)),
	}
	for i, r := range m.Rows {
		r.HasElems = append([]int(nil), r.HasElems...)
		cp.Rows[i] = r
		cp.rowIndex[r.Name] = i
	}
	for j, c := range m.Cols {
		c.HasElems = append([]int(nil), c.HasElems...)
		c.Index = append([]int(nil), c.Index...)
		cp.Cols[j] = c
		cp.colIndex[c.Name] = j
	}
	return cp
}

// String returns a short description of the model.
func (m *Model) String() string {
	sense := "min"
	if m.Maximize {
		sense = "max"
	}
	return fmt.Sprintf("%s (%s, %d rows, %d cols, %d elems)", m.Name, sense, len(m.Rows), len(m.Cols), len(m.Elems))
}
