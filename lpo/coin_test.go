package lpo

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoinSolnOptimal(t *testing.T) {
	m, x, y := smallModel(t)
	input := `Optimal - objective value -11.00000000
      0 x                      3                      -1
**    1 y                      1                       0
`
	soln, err := ParseCoinSoln(strings.NewReader(input), m)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, soln.Status)
	assert.Equal(t, 3.0, soln.Values[x])
	assert.Equal(t, 1.0, soln.Values[y])
	assert.Equal(t, 11.0, soln.ObjVal, "objective is reported in the model's sense")
	assert.Equal(t, 0.0, soln.Gap)
	assert.Equal(t, "cbc", soln.Solver)
}

func TestParseCoinSolnMissingColumnsAreZero(t *testing.T) {
	m, x, y := smallModel(t)
	input := "Optimal - objective value -9\n      0 x   3   0\n"

	soln, err := ParseCoinSoln(strings.NewReader(input), m)
	require.NoError(t, err)
	assert.Equal(t, 3.0, soln.Values[x])
	assert.Equal(t, 0.0, soln.Values[y])
}

func TestParseCoinSolnStatuses(t *testing.T) {
	m, _, _ := smallModel(t)

	tests := []struct {
		line   string
		status Status
	}{
		{"Infeasible - objective value 0.00000000", StatusInfeasible},
		{"Integer infeasible - objective value 0.00000000", StatusInfeasible},
		{"Unbounded - objective value 0.00000000", StatusUnbounded},
		{"Stopped on time - objective value -9.00000000", StatusFeasible},
		{"Stopped on time - objective value 1e+50", StatusNotSolved},
		{"Stopped on iterations", StatusNotSolved},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			soln, err := ParseCoinSoln(strings.NewReader(tt.line+"\n      0 x  3  0\n"), m)
			require.NoError(t, err)
			assert.Equal(t, tt.status, soln.Status)
			assert.Equal(t, tt.status.HasSolution(), soln.Values != nil)
			if tt.status != StatusOptimal {
				assert.True(t, math.IsNaN(soln.Gap))
			}
		})
	}
}

func TestParseCoinSummary(t *testing.T) {
	tests := []struct {
		name  string
		out   string
		gap   float64
		ok    bool
		nodes int
	}{
		{
			name: "objective and bound",
			out: `Cbc0010I After 100 nodes, 12 on tree, -10 best solution, best possible -11.2 (0.51 seconds)
Result - Stopped on time limit

Objective value:                -10.00000000
Lower bound:                    -11.000
Gap:                            0.10
Enumerated nodes:               7
Total iterations:               311
`,
			gap: 0.1, ok: true, nodes: 7,
		},
		{
			name: "gap line only",
			out:  "Result - Stopped on gap\n\nGap:   0.25\nEnumerated nodes: 3\n",
			gap:  0.25, ok: true, nodes: 3,
		},
		{
			name: "no bound yet",
			out:  "Objective value: -10\nLower bound: -1e+50\n",
		},
		{
			name: "empty log",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := parseCoinSummary(tt.out)
			gap, ok := sum.relGap()
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.gap, gap, 1e-9)
			assert.Equal(t, tt.nodes, sum.nodes)
		})
	}
}

// fakeCbc writes a shell script that answers like cbc: it writes soln to the
// file named after -solu and prints out.
func fakeCbc(t *testing.T, soln, out string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "cbc")
	script := "#!/bin/sh\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  if [ \"$1\" = -solu ]; then sol=$2; fi\n" +
		"  shift\n" +
		"done\n" +
		"cat > \"$sol\" <<'EOF'\n" + soln + "EOF\n" +
		"cat <<'EOF'\n" + out + "EOF\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestCoinSolverStoppedRunReportsGap(t *testing.T) {
	m, x, y := smallModel(t)
	cbc := fakeCbc(t,
		"Stopped on time - objective value -10.00000000\n      0 x  3  0\n      1 y  0.5  0\n",
		"Result - Stopped on time limit\n\nObjective value:  -10.00000000\nLower bound:  -11.000\nGap:  0.10\nEnumerated nodes:  7\n")
	s := &CoinSolver{Path: cbc, TempDir: t.TempDir(), TimeLimit: time.Second}

	soln, err := s.Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, StatusFeasible, soln.Status)
	assert.InDelta(t, 0.1, soln.Gap, 1e-9)
	assert.Equal(t, 7, soln.Nodes)
	assert.InDelta(t, 3, soln.Values[x], 1e-9)
	assert.InDelta(t, 0.5, soln.Values[y], 1e-9)
}

func TestCoinSolverOptimalRunKeepsZeroGap(t *testing.T) {
	m, _, _ := smallModel(t)
	cbc := fakeCbc(t,
		"Optimal - objective value -11.00000000\n      0 x  3  0\n      1 y  1  0\n",
		"Result - Optimal solution found\n\nObjective value:  -11.00000000\nEnumerated nodes:  0\n")
	s := &CoinSolver{Path: cbc, TempDir: t.TempDir()}

	soln, err := s.Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, soln.Status)
	assert.Equal(t, 0.0, soln.Gap)
}

func TestParseCoinSolnErrors(t *testing.T) {
	m, _, _ := smallModel(t)

	inputs := map[string]string{
		"empty":          "",
		"unknown status": "Something odd\n",
		"unknown column": "Optimal - objective value 0\n 0 w 1 0\n",
		"short line":     "Optimal - objective value 0\n 0 x\n",
		"bad value":      "Optimal - objective value 0\n 0 x abc 0\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCoinSoln(strings.NewReader(input), m)
			assert.Error(t, err)
		})
	}
}

func TestCoinSolverMissingBinary(t *testing.T) {
	m, _, _ := smallModel(t)
	s := &CoinSolver{Path: "/nonexistent/cbc", TempDir: t.TempDir()}

	_, err := s.Solve(context.Background(), m)
	assert.Error(t, err)
}
