package lpo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallModel returns
//
//	max 3x + 2y
//	s.t. x + y  <= 4
//	     x + 3y <= 6
//	     0 <= x <= 3, y >= 0
func smallModel(t *testing.T) (*Model, int, int) {
	t.Helper()

	m := NewModel("small")
	x, err := m.AddCol("x", nil, ColReal, 0, 3)
	require.NoError(t, err)
	y, err := m.AddCol("y", nil, ColReal, 0, Plinfy)
	require.NoError(t, err)

	_, err = m.AddConstr("c1", NewExpr().Add(x, 1).Add(y, 1), RowL, Constant(4))
	require.NoError(t, err)
	_, err = m.AddConstr("c2", NewExpr().Add(x, 1).Add(y, 3), RowL, Constant(6))
	require.NoError(t, err)

	m.SetObjective(NewExpr().Add(x, 3).Add(y, 2), true)
	return m, x, y
}

func TestColName(t *testing.T) {
	assert.Equal(t, "R", ColName("R"))
	assert.Equal(t, "x[2]", ColName("x", 2))
	assert.Equal(t, "G[1,3]", ColName("G", 1, 3))
}

func TestAddColErrors(t *testing.T) {
	m := NewModel("m")
	_, err := m.AddCol("x", []int{1}, ColReal, 0, 1)
	require.NoError(t, err)

	_, err = m.AddCol("x", []int{1}, ColReal, 0, 1)
	assert.Error(t, err, "duplicate column")

	_, err = m.AddCol("y", nil, "B", 0, 1)
	assert.Error(t, err, "unknown type")

	_, err = m.AddCol("z", nil, ColReal, 2, 1)
	assert.Error(t, err, "empty bounds")
}

func TestAddColCopiesIndex(t *testing.T) {
	m := NewModel("m")
	idx := []int{1, 2}
	j, err := m.AddCol("x", idx, ColReal, 0, 1)
	require.NoError(t, err)

	idx[0] = 9
	assert.Equal(t, []int{1, 2}, m.Cols[j].Index)
	assert.Equal(t, "x[1,2]", m.Cols[j].Name)
}

func TestAddConstrMovesTerms(t *testing.T) {
	m := NewModel("m")
	x, _ := m.AddCol("x", nil, ColReal, 0, Plinfy)
	y, _ := m.AddCol("y", nil, ColReal, 0, Plinfy)

	// x + 2 = y + 5  ->  x - y = 3
	i, err := m.AddConstr("bal", Var(x).AddConst(2), RowE, Var(y).AddConst(5))
	require.NoError(t, err)

	row := m.Rows[i]
	assert.Equal(t, RowE, row.Type)
	assert.Equal(t, 3.0, row.Rhs)
	require.Len(t, row.HasElems, 2)
	assert.Equal(t, InputElem{InRow: i, InCol: x, Value: 1}, m.Elems[row.HasElems[0]])
	assert.Equal(t, InputElem{InRow: i, InCol: y, Value: -1}, m.Elems[row.HasElems[1]])
	assert.Equal(t, []int{row.HasElems[0]}, m.Cols[x].HasElems)

	_, err = m.AddConstr("bal", Var(x), RowE, Constant(0))
	assert.Error(t, err, "duplicate row")

	_, err = m.AddConstr("bad", Var(x), "N", Constant(0))
	assert.Error(t, err, "unknown sense")

	_, err = m.AddConstr("ghost", Var(7), RowL, Constant(0))
	assert.Error(t, err, "unknown column")
}

func TestEvaluation(t *testing.T) {
	m, _, _ := smallModel(t)
	point := []float64{3, 2}

	lhs, err := m.CalcLhs(1, point)
	require.NoError(t, err)
	assert.Equal(t, 9.0, lhs)

	viol, err := m.CalcConViolation(1, point)
	require.NoError(t, err)
	assert.Equal(t, 3.0, viol)

	viol, err = m.CalcConViolation(0, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, viol)

	res, err := m.Residuals(point)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, res)

	_, err = m.CalcLhs(5, point)
	assert.Error(t, err)
	_, err = m.CalcLhs(0, []float64{1})
	assert.Error(t, err)

	assert.Equal(t, 13.0, m.ObjValue(point))
	assert.Error(t, m.CheckPoint(point, 1e-9))
	assert.NoError(t, m.CheckPoint([]float64{3, 1}, 1e-9))
	assert.Error(t, m.CheckPoint([]float64{4, 0}, 1e-9), "bound violated")
}

func TestCheckPointIntegrality(t *testing.T) {
	m := NewModel("m")
	_, err := m.AddCol("y", nil, ColInt, 0, 1)
	require.NoError(t, err)

	assert.Error(t, m.CheckPoint([]float64{0.5}, 1e-9))
	assert.NoError(t, m.CheckPoint([]float64{1}, 1e-9))
	assert.True(t, m.IsMip())
}

func TestAsMinimization(t *testing.T) {
	m, x, _ := smallModel(t)
	m.ObjConst = 1

	mm, negated := m.AsMinimization()
	require.True(t, negated)
	assert.False(t, mm.Maximize)
	assert.Equal(t, -3.0, mm.Obj[x].Coef)
	assert.Equal(t, -1.0, mm.ObjConst)

	// The original is untouched.
	assert.True(t, m.Maximize)
	assert.Equal(t, 3.0, m.Obj[x].Coef)

	same, negated := mm.AsMinimization()
	assert.False(t, negated)
	assert.Same(t, mm, same)
}

func TestClone(t *testing.T) {
	m, x, _ := smallModel(t)
	cp := m.Clone()

	cp.Rows[0].HasElems[0] = 99
	cp.Cols[x].BndUp = 1
	cp.Obj[0].Coef = 0

	assert.NotEqual(t, 99, m.Rows[0].HasElems[0])
	assert.Equal(t, 3.0, m.Cols[x].BndUp)
	assert.Equal(t, 3.0, m.Obj[0].Coef)

	j, ok := cp.ColIndex("y")
	assert.True(t, ok)
	assert.Equal(t, 1, j)
}

func TestDelEmptyRows(t *testing.T) {
	m := NewModel("m")
	x, _ := m.AddCol("x", nil, ColReal, 0, Plinfy)
	_, err := m.AddConstr("empty1", Constant(0), RowL, Constant(1))
	require.NoError(t, err)
	_, err = m.AddConstr("keep", Var(x), RowL, Constant(2))
	require.NoError(t, err)
	_, err = m.AddConstr("empty2", Constant(3), RowE, Constant(3))
	require.NoError(t, err)

	n, err := DelEmptyRows(m)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, m.Rows, 1)
	assert.Equal(t, "keep", m.Rows[0].Name)
	assert.Equal(t, 0, m.Elems[0].InRow)

	i, ok := m.RowIndex("keep")
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	_, ok = m.RowIndex("empty1")
	assert.False(t, ok)
}

func TestDelEmptyRowsInfeasible(t *testing.T) {
	m := NewModel("m")
	_, err := m.AddConstr("never", Constant(2), RowL, Constant(1))
	require.NoError(t, err)

	_, err = DelEmptyRows(m)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	m, _, _ := smallModel(t)
	assert.Equal(t, "small (max, 2 rows, 2 cols, 4 elems)", m.String())
}
