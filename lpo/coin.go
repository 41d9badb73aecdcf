package lpo

// Coin-OR CBC backend. The model is written as a minimization MPS file, cbc is
// run on it, and the solution file written by cbc is parsed back.

import (
	"bufio"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// cbcNoSolution is the objective value cbc reports when it has no solution.
const cbcNoSolution = 1e49

// CoinSolver solves models with the cbc binary.
type CoinSolver struct {
	Path      string        // cbc executable, "cbc" when empty
	TempDir   string        // parent of the working directory, os.TempDir() when empty
	TimeLimit time.Duration // passed to cbc as -seconds, none when zero
	GapLimit  float64       // passed to cbc as -ratioGap, none when zero
	KeepFiles bool          // keep the MPS and solution files after the solve
}

// Solve writes m to an MPS file, runs cbc on it and parses the solution.
// In case of failure, function returns an error.
func (s *CoinSolver) Solve(ctx context.Context, m *Model) (*Soln, error) {
	path := s.Path
	if path == "" {
		path = "cbc"
	}

	dir, cleanup, err := workDir(s.TempDir, "cbc-", s.KeepFiles)
	if err != nil {
		return nil, errors.Wrap(err, "CoinSolver failed")
	}
	defer cleanup()

	// cbc ignores OBJSENSE in some versions, so it always receives a
	// minimization.
	minModel, _ := m.AsMinimization()
	mpsFile := filepath.Join(dir, "model.mps")
	solnFile := filepath.Join(dir, "model.sol")
	if err = WriteMpsFile(mpsFile, minModel); err != nil {
		return nil, errors.Wrap(err, "CoinSolver failed")
	}

	args := []string{mpsFile}
	if s.TimeLimit > 0 {
		args = append(args, "-seconds", strconv.FormatFloat(s.TimeLimit.Seconds(), 'f', -1, 64))
	}
	if s.GapLimit > 0 {
		args = append(args, "-ratioGap", strconv.FormatFloat(s.GapLimit, 'g', -1, 64))
	}
	args = append(args, "-solve", "-solu", solnFile)

	startTime := time.Now()
	out, err := runSolver(ctx, dir, path, args...)
	if err != nil {
		if ctx.Err() != nil {
			log().Warn("cbc stopped by context", "err", err)
			return &Soln{Status: StatusNotSolved, Gap: math.NaN(), Solver: "cbc"}, nil
		}
		return nil, errors.Wrap(err, "CoinSolver failed")
	}
	log().Info("cbc finished", "elapsed", time.Since(startTime))

	f, err := os.Open(solnFile)
	if err != nil {
		return nil, errors.Wrap(err, "CoinSolver failed to open solution file")
	}
	defer f.Close()

	soln, err := ParseCoinSoln(f, m)
	if err != nil {
		return nil, errors.Wrap(err, "CoinSolver failed")
	}

	// The solution file has no bound, so the gap of a stopped run comes from
	// the result block of the log.
	sum := parseCoinSummary(out)
	soln.Nodes = sum.nodes
	if soln.Status == StatusFeasible {
		if gap, ok := sum.relGap(); ok {
			soln.Gap = gap
		}
	}
	return soln, nil
}

// coinSummary holds the figures of the result block cbc prints when it
// finishes:
//
//	Result - Stopped on time limit
//
//	Objective value:                -24259.50000000
//	Lower bound:                    -24300.000
//	Gap:                            0.00
//	Enumerated nodes:               12
type coinSummary struct {
	obj, bound, gap          float64
	hasObj, hasBound, hasGap bool
	nodes                    int
}

// parseCoinSummary reads the result block from the cbc log. Lines that are
// absent or unreadable leave their figure unset.
func parseCoinSummary(out string) coinSummary {
	var sum coinSummary
	for _, line := range strings.Split(out, "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(val)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		switch key {
		case "Objective value":
			sum.obj, sum.hasObj = v, true
		case "Lower bound":
			sum.bound, sum.hasBound = v, true
		case "Gap":
			sum.gap, sum.hasGap = v, true
		case "Enumerated nodes":
			sum.nodes = int(v)
		}
	}
	return sum
}

// relGap returns the relative gap of the summary, computed from the
// objective and the bound when both are printed, else the printed gap.
func (sum coinSummary) relGap() (float64, bool) {
	switch {
	case sum.hasObj && sum.hasBound && math.Abs(sum.bound) < cbcNoSolution:
		return relGap(sum.obj, sum.bound), true
	case sum.hasGap:
		return sum.gap, true
	}
	return 0, false
}

// ParseCoinSoln parses a cbc solution file for model m. The first line holds
// the status and objective value; every other line holds the index, name,
// value and reduced cost of a column, possibly prefixed by "**" when the
// value violates a bound. Columns not listed are zero. The objective value
// is recomputed from the values in the sense of m.
// In case of failure, function returns an error.
func ParseCoinSoln(r io.Reader, m *Model) (*Soln, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to read cbc solution")
		}
		return nil, errors.New("cbc solution is empty")
	}

	soln := &Soln{Gap: math.NaN(), Solver: "cbc"}
	statusLine := strings.TrimSpace(sc.Text())
	reported, hasObj := coinObjValue(statusLine)
	lower := strings.ToLower(statusLine)

	switch {
	case strings.HasPrefix(lower, "optimal"):
		soln.Status = StatusOptimal
		soln.Gap = 0
	case strings.Contains(lower, "infeasible"):
		soln.Status = StatusInfeasible
	case strings.Contains(lower, "unbounded"):
		soln.Status = StatusUnbounded
	case strings.HasPrefix(lower, "stopped"):
		if hasObj && math.Abs(reported) < cbcNoSolution {
			soln.Status = StatusFeasible
		} else {
			soln.Status = StatusNotSolved
		}
	default:
		return nil, errors.Errorf("unrecognized cbc status line %q", statusLine)
	}

	if !soln.Status.HasSolution() {
		return soln, nil
	}

	values := make([]float64, len(m.Cols))
	lineNum := 1
	for sc.Scan() {
		lineNum++
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, errors.Errorf("cbc solution line %d has %d fields", lineNum, len(fields))
		}

		j, ok := m.ColIndex(fields[1])
		if !ok {
			return nil, errors.Errorf("cbc solution line %d names unknown column %s", lineNum, fields[1])
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cbc solution line %d has bad value", lineNum)
		}
		values[j] = v
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read cbc solution")
	}

	soln.Values = values
	soln.ObjVal = m.ObjValue(values)
	return soln, nil
}

// coinObjValue extracts the number following "objective value" in a cbc
// status line.
func coinObjValue(line string) (float64, bool) {
	const key = "objective value"
	idx := strings.Index(strings.ToLower(line), key)
	if idx < 0 {
		return 0, false
	}
	fields := strings.Fields(line[idx+len(key):])
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
