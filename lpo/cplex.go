package lpo

// Cplex interactive backend. The model is written to an MPS file, a command
// file tells the cplex binary to read, optimize and write the solution as
// xml, and the xml solution is parsed back.

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CplexSoln is the xml solution file written by Cplex.
type CplexSoln struct {
	XMLName xml.Name `xml:"CPLEXSolution"`
	Version string   `xml:"version,attr"`
	Header  struct {
		ProblemName     string  `xml:"problemName,attr"`
		ObjValue        float64 `xml:"objectiveValue,attr"`
		SolTypeValue    int     `xml:"solutionTypeValue,attr"`
		SolTypeString   string  `xml:"solutionTypeString,attr"`
		SolStatusValue  int     `xml:"solutionStatusValue,attr"`
		SolStatusString string  `xml:"solutionStatusString,attr"`
		SolMethodString string  `xml:"solutionMethodString,attr"`
		PrimalFeasible  int     `xml:"primalFeasible,attr"`
		DualFeasible    int     `xml:"dualFeasible,attr"`
		MIPNodes        int     `xml:"MIPNodes,attr"`
		MIPIterations   int     `xml:"MIPIterations,attr"`
		SimplexItns     int     `xml:"simplexIterations,attr"`
		BarrierItns     int     `xml:"barrierIterations,attr"`
		WriteLevel      int     `xml:"writeLevel,attr"`
	} `xml:"header"`
	Quality struct {
		EpInt           float64 `xml:"epInt,attr"`
		EpRHS           float64 `xml:"epRHS,attr"`
		MaxIntInfeas    float64 `xml:"maxIntInfeas,attr"`
		MaxPrimalInfeas float64 `xml:"maxPrimalInfeas,attr"`
		MaxX            float64 `xml:"maxX,attr"`
		MaxSlack        float64 `xml:"maxSlack,attr"`
	} `xml:"quality"`
	LinCons []struct {
		Name  string  `xml:"name,attr"`
		Index int     `xml:"index,attr"`
		Slack float64 `xml:"slack,attr"`
		Dual  float64 `xml:"dual,attr"`
	} `xml:"linearConstraints>constraint"`
	Varbs []struct {
		Name    string  `xml:"name,attr"`
		Index   int     `xml:"index,attr"`
		Value   float64 `xml:"value,attr"`
		RedCost float64 `xml:"reducedCost,attr"`
	} `xml:"variables>variable"`
}

// Cplex solution status codes handled by ParseCplexSoln.
const (
	cpxOptimal         = 1
	cpxUnbounded       = 2
	cpxInfeasible      = 3
	cpxMipOptimal      = 101
	cpxMipOptimalTol   = 102
	cpxMipInfeasible   = 103
	cpxMipTimeLimFeas  = 107
	cpxMipTimeLimInfes = 108
	cpxMipUnbounded    = 118
)

// CplexSolver solves models with the interactive cplex binary.
type CplexSolver struct {
	Path      string        // cplex executable, "cplex" when empty
	TempDir   string        // parent of the working directory, os.TempDir() when empty
	TimeLimit time.Duration // "set timelimit", none when zero
	GapLimit  float64       // "set mip tolerances mipgap", none when zero
	KeepFiles bool          // keep the MPS, command and solution files
}

// Solve writes m and a command file, runs cplex and parses the xml solution.
// In case of failure, function returns an error.
func (s *CplexSolver) Solve(ctx context.Context, m *Model) (*Soln, error) {
	path := s.Path
	if path == "" {
		path = "cplex"
	}

	dir, cleanup, err := workDir(s.TempDir, "cplex-", s.KeepFiles)
	if err != nil {
		return nil, errors.Wrap(err, "CplexSolver failed")
	}
	defer cleanup()

	mpsFile := filepath.Join(dir, "model.mps")
	solnFile := filepath.Join(dir, "model.xml")
	cmdFile := filepath.Join(dir, "cpxCommands.txt")

	if err = WriteMpsFile(mpsFile, m); err != nil {
		return nil, errors.Wrap(err, "CplexSolver failed")
	}

	f, err := os.Create(cmdFile)
	if err != nil {
		return nil, errors.Wrap(err, "CplexSolver failed to create command file")
	}
	fmt.Fprintln(f, "read", mpsFile, "mps")
	if s.TimeLimit > 0 {
		fmt.Fprintln(f, "set timelimit", s.TimeLimit.Seconds())
	}
	if s.GapLimit > 0 && m.IsMip() {
		fmt.Fprintln(f, "set mip tolerances mipgap", s.GapLimit)
	}
	fmt.Fprintln(f, "optimize")
	fmt.Fprintln(f, "write", solnFile, "sol")
	fmt.Fprintln(f, "quit")
	if err = f.Close(); err != nil {
		return nil, errors.Wrap(err, "CplexSolver failed to write command file")
	}

	out, err := runSolver(ctx, dir, path, "-f", cmdFile)
	if err != nil {
		if ctx.Err() != nil {
			log().Warn("cplex stopped by context", "err", err)
			return &Soln{Status: StatusNotSolved, Gap: math.NaN(), Solver: "cplex"}, nil
		}
		return nil, errors.Wrap(err, "CplexSolver failed")
	}

	if strings.Contains(out, "1016: Promotional version") {
		return nil, errors.New("problem too large for promotional version of cplex")
	}
	if i := strings.Index(out, "CPLEX Error"); i >= 0 {
		msg := out[i:]
		if nl := strings.IndexByte(msg, '\n'); nl >= 0 {
			msg = msg[:nl]
		}
		return nil, errors.New(strings.TrimSpace(msg))
	}

	// Cplex writes no solution file when the model has no solution.
	sf, err := os.Open(solnFile)
	if os.IsNotExist(err) {
		return cplexNoSolnStatus(out), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "CplexSolver failed to open solution file")
	}
	defer sf.Close()

	soln, err := ParseCplexSoln(sf, m)
	if err != nil {
		return nil, errors.Wrap(err, "CplexSolver failed")
	}
	return soln, nil
}

// ParseCplexSoln parses an xml solution written by Cplex for model m.
// In case of failure, function returns an error.
func ParseCplexSoln(r io.Reader, m *Model) (*Soln, error) {
	var cs CplexSoln
	if err := xml.NewDecoder(r).Decode(&cs); err != nil {
		return nil, errors.Wrap(err, "unable to parse cplex solution")
	}

	soln := &Soln{Gap: math.NaN(), Solver: "cplex", Nodes: cs.Header.MIPNodes}
	switch cs.Header.SolStatusValue {
	case cpxOptimal, cpxMipOptimal:
		soln.Status = StatusOptimal
		soln.Gap = 0
	case cpxMipOptimalTol:
		soln.Status = StatusOptimal
	case cpxMipTimeLimFeas:
		soln.Status = StatusFeasible
	case cpxMipTimeLimInfes:
		soln.Status = StatusNotSolved
	case cpxInfeasible, cpxMipInfeasible:
		soln.Status = StatusInfeasible
	case cpxUnbounded, cpxMipUnbounded:
		soln.Status = StatusUnbounded
	default:
		return nil, errors.Errorf("unexpected cplex status %d (%s)",
			cs.Header.SolStatusValue, cs.Header.SolStatusString)
	}

	if !soln.Status.HasSolution() {
		return soln, nil
	}

	values := make([]float64, len(m.Cols))
	for _, v := range cs.Varbs {
		j, ok := m.ColIndex(v.Name)
		if !ok {
			return nil, errors.Errorf("cplex solution names unknown column %s", v.Name)
		}
		values[j] = v.Value
	}
	soln.Values = values
	soln.ObjVal = m.ObjValue(values)

	log().Debug("parsed cplex solution", "status", cs.Header.SolStatusString,
		"obj", cs.Header.ObjValue, "cols", len(cs.Varbs), "rows", len(cs.LinCons))
	return soln, nil
}

// cplexNoSolnStatus reads the status from the cplex log when no solution file
// was written.
func cplexNoSolnStatus(out string) *Soln {
	soln := &Soln{Status: StatusNotSolved, Gap: math.NaN(), Solver: "cplex"}
	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "unbounded"):
		soln.Status = StatusUnbounded
	case strings.Contains(lower, "infeasible"):
		soln.Status = StatusInfeasible
	}
	return soln
}

// cplexErrStatus maps an error raised by the Cplex library to a solve status.
// Errors that say the problem has no solution (CPXERR_NO_SOLN is 1217) give
// not solved, infeasible or unbounded. Any other error is not a status and
// ok is false.
func cplexErrStatus(err error, solver string) (*Soln, bool) {
	if err == nil {
		return nil, false
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "1217") && !strings.Contains(lower, "no solution") &&
		!strings.Contains(lower, "infeasible") && !strings.Contains(lower, "unbounded") &&
		!strings.Contains(lower, "limit") {
		return nil, false
	}
	soln := cplexNoSolnStatus(lower)
	soln.Solver = solver
	return soln, true
}
