package lpo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMps(t *testing.T) {
	m := NewModel("mix")
	x, _ := m.AddCol("x", []int{1}, ColReal, 0, Plinfy)
	y, _ := m.AddCol("y", []int{1}, ColInt, 0, 1)
	n, _ := m.AddCol("n", nil, ColInt, 0, Plinfy)
	a, _ := m.AddCol("A", []int{1}, ColReal, -Plinfy, Plinfy)
	_, _ = m.AddCol("f", nil, ColReal, 2, 2)
	l, _ := m.AddCol("l", nil, ColReal, -5, 7)

	_, err := m.AddConstr("cap", Var(x), RowL, NewExpr().Add(y, 10))
	require.NoError(t, err)
	_, err = m.AddConstr("def", Var(a), RowE, NewExpr().Add(x, 3).Add(n, 1).AddConst(4))
	require.NoError(t, err)
	_, err = m.AddConstr("low", Var(l), RowG, Constant(-1))
	require.NoError(t, err)
	m.SetObjective(Var(a).AddConst(1.5), true)

	var buf bytes.Buffer
	require.NoError(t, WriteMps(&buf, m))
	out := buf.String()

	expected := []string{
		"NAME          mix",
		"OBJSENSE\n    MAX",
		" N  obj",
		" L  cap",
		" E  def",
		" G  low",
		"    x[1]  cap  1",
		"    MARKER0  'MARKER'  'INTORG'",
		"    y[1]  cap  -10",
		"    n  def  -1",
		"    MARKER0  'MARKER'  'INTEND'",
		"    A[1]  obj  1",
		"    f  obj  0",
		"    RHS  obj  -1.5",
		"    RHS  def  4",
		"    RHS  low  -1",
		" BV BND  y[1]",
		" PL BND  n",
		" FR BND  A[1]",
		" FX BND  f  2",
		" LO BND  l  -5",
		" UP BND  l  7",
	}
	for _, s := range expected {
		assert.Contains(t, out, s)
	}
	assert.True(t, strings.HasSuffix(out, "ENDATA\n"))

	// Section order.
	sections := []string{"ROWS", "COLUMNS", "RHS", "BOUNDS", "ENDATA"}
	last := -1
	for _, s := range sections {
		i := strings.Index(out, s+"\n")
		require.GreaterOrEqual(t, i, 0, s)
		assert.Greater(t, i, last, s)
		last = i
	}

	// x has a zero lower bound and no upper bound, so no bound line.
	assert.NotContains(t, out, "BND  x[1]")
}

func TestWriteMpsFile(t *testing.T) {
	m, _, _ := smallModel(t)
	fileName := filepath.Join(t.TempDir(), "small.mps")

	require.NoError(t, WriteMpsFile(fileName, m))
	data, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(data), " UP BND  x  3")

	err = WriteMpsFile(filepath.Join(t.TempDir(), "missing", "x.mps"), m)
	assert.Error(t, err)
}

func TestWriteMpsUnnamed(t *testing.T) {
	m := NewModel("")
	var buf bytes.Buffer
	require.NoError(t, WriteMps(&buf, m))
	assert.True(t, strings.HasPrefix(buf.String(), "NAME          model\n"))
	assert.NotContains(t, buf.String(), "OBJSENSE")
}
