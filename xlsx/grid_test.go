package xlsx

import (
	"testing"

	"github.com/go-opt/relaves/lpo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCol struct {
	base  string
	index []int
	value float64
}

// testSolution builds a model holding the given columns and a solution with
// their values.
func testSolution(t *testing.T, cols []testCol) (*lpo.Model, *lpo.Soln) {
	t.Helper()
	m := lpo.NewModel("grid")
	soln := &lpo.Soln{Status: lpo.StatusOptimal, Solver: "bnb"}
	for _, c := range cols {
		_, err := m.AddCol(c.base, c.index, lpo.ColReal, 0, lpo.Plinfy)
		require.NoError(t, err)
		soln.Values = append(soln.Values, c.value)
	}
	return m, soln
}

func dailyCols() []testCol {
	return []testCol{
		{"L", []int{1}, 3},
		{"L", []int{2}, 2.5},
		{"G", []int{2, 1}, 4},
		{"G", []int{1, 1}, 0},
		{"G", []int{1, 2}, 1e-13},
		{"G", []int{2, 2}, 7.0000000001},
		{"R", nil, 1},
		{"V", nil, 0},
	}
}

func TestBuildGrid(t *testing.T) {
	m, soln := testSolution(t, dailyCols())

	g, err := BuildGrid(m, soln, GridOptions{})
	require.NoError(t, err)
	assert.False(t, g.Vertical)
	assert.Equal(t, []string{"Day", "L", "G_2"}, g.Header)
	assert.Equal(t, [][]interface{}{
		{int64(1), int64(3), int64(4)},
		{int64(2), 2.5, int64(7)},
	}, g.Rows)
	assert.Equal(t, []Scalar{{Name: "R", Value: int64(1)}}, g.Scalars)
}

func TestBuildGridIncludeZeros(t *testing.T) {
	m, soln := testSolution(t, dailyCols())

	g, err := BuildGrid(m, soln, GridOptions{IncludeZeros: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Day", "L", "G_1", "G_2"}, g.Header)
	assert.Equal(t, [][]interface{}{
		{int64(1), int64(3), int64(0), int64(4)},
		{int64(2), 2.5, int64(0), int64(7)},
	}, g.Rows)
	assert.Len(t, g.Scalars, 2)

	// A larger tolerance drops more values.
	g, err = BuildGrid(m, soln, GridOptions{ZeroTol: 3.5})
	require.NoError(t, err)
	assert.Equal(t, []string{"Day", "G_2"}, g.Header)
	assert.Equal(t, [][]interface{}{{int64(1), int64(4)}, {int64(2), int64(7)}}, g.Rows)
}

func TestBuildGridBlankCells(t *testing.T) {
	m, soln := testSolution(t, []testCol{
		{"w", []int{2, 1, 3}, 5},
		{"w", []int{1, 1, 1}, 1.25},
		{"E", []int{2}, 9},
	})

	g, err := BuildGrid(m, soln, GridOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Day", "w_1_1", "w_2_1", "E"}, g.Header)
	assert.Equal(t, [][]interface{}{
		{int64(1), 1.25, nil, nil},
		{int64(2), nil, nil, int64(9)},
		{int64(3), nil, int64(5), nil},
	}, g.Rows)
}

func TestBuildGridVertical(t *testing.T) {
	m, soln := testSolution(t, []testCol{
		{"V", nil, 2.5},
		{"x", []int{1}, 0},
		{"R", nil, 1},
	})

	g, err := BuildGrid(m, soln, GridOptions{})
	require.NoError(t, err)
	assert.True(t, g.Vertical)
	assert.Equal(t, []string{"Variable", "R", "V"}, g.Header)
	assert.Equal(t, [][]interface{}{{"Value", int64(1), 2.5}}, g.Rows)
}

func TestBuildGridErrors(t *testing.T) {
	m, soln := testSolution(t, dailyCols())

	_, err := BuildGrid(m, nil, GridOptions{})
	assert.Error(t, err)
	_, err = BuildGrid(m, &lpo.Soln{Status: lpo.StatusInfeasible}, GridOptions{})
	assert.Error(t, err)

	soln.Values = soln.Values[:3]
	_, err = BuildGrid(m, soln, GridOptions{})
	assert.Error(t, err)
}

func TestCellOf(t *testing.T) {
	assert.Equal(t, int64(-2), cellOf(-2.0000000001))
	assert.Equal(t, 0.5, cellOf(0.5))
	assert.Equal(t, 1e300, cellOf(1e300))
}
