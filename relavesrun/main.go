//==============================================================================
// relavesrun: Executable that builds, solves and exports the tailings
// water-management model.
// 01   Oct. 18, 2026   First version
// 02   Oct. 18, 2026   Configuration through flags, environment and file

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-opt/relaves"
	"github.com/go-opt/relaves/lpo"
	"github.com/go-opt/relaves/xlsx"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
)

// Exit codes.
const (
	exitOK         = 0
	exitConfig     = 1 // bad settings, parameters or model
	exitSolver     = 2 // the solver failed
	exitNoSolution = 3 // infeasible, unbounded, or a limit reached without incumbent
)

// largeModelCols is the column count above which the in-process solver is
// expected to be slow.
const largeModelCols = 300

//==============================================================================

// newLogger returns the tint logger of the run.
func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
	}))
}

// literalParams returns the named literal parameter set.
func literalParams(name string) relaves.RawParams {
	if name == fallbackPrueba {
		return relaves.DemoParams()
	}
	return relaves.RealParams()
}

// readParamFile reads a YAML or JSON parameter file by extension, and a
// workbook otherwise.
func readParamFile(fileName string) (relaves.RawParams, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml", ".json":
		return relaves.LoadParamsFile(fileName)
	}
	return xlsx.ReadParams(fileName)
}

// wpLoadParams reads the configured parameter file, falling back to the
// literal set when no file is given or it cannot be read. Parameters that are
// read but invalid are an error.
// In case of failure, function returns an error.
func wpLoadParams(cfg *Config, logger *slog.Logger) (*relaves.Params, error) {
	var raw relaves.RawParams
	source := "literal " + cfg.Fallback

	if cfg.ParamsFile == "" {
		raw = literalParams(cfg.Fallback)
	} else {
		var err error
		if raw, err = readParamFile(cfg.ParamsFile); err != nil {
			logger.Warn("parameter file unreadable, using literal set", "file", cfg.ParamsFile,
				"fallback", cfg.Fallback, "err", err)
			raw = literalParams(cfg.Fallback)
		} else {
			source = cfg.ParamsFile
		}
	}

	p, err := relaves.NewParams(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid parameters from %s", source)
	}
	logger.Info("parameters loaded", "source", source, "days", p.T, "products", p.M, "ponds", p.K)
	return p, nil
}

// newSolver returns the configured backend.
// In case of failure, function returns an error.
func newSolver(cfg *Config) (lpo.Solver, error) {
	switch cfg.Backend {
	case backendCbc:
		return &lpo.CoinSolver{Path: cfg.SolverPath, TimeLimit: cfg.TimeLimit, GapLimit: cfg.Gap}, nil
	case backendCplex:
		return &lpo.CplexSolver{Path: cfg.SolverPath, TimeLimit: cfg.TimeLimit, GapLimit: cfg.Gap}, nil
	case backendGpx:
		return lpo.NewGpxSolver(false, "")
	case backendBnb:
		return &lpo.BnbSolver{TimeLimit: cfg.TimeLimit, GapLimit: cfg.Gap, MaxNodes: cfg.MaxNodes}, nil
	}
	return nil, errors.Errorf("unknown solver backend %q", cfg.Backend)
}

// wpExport writes the solution workbook. Failures are logged and do not
// change the outcome of the run.
func wpExport(cfg *Config, p *relaves.Params, m *lpo.Model, soln *lpo.Soln, runID string, logger *slog.Logger) {
	if cfg.OutputFile == "" {
		return
	}

	sum := xlsx.NewSummary(soln, runID)
	cash, err := relaves.CashFlow(p, cfg.Options, m, soln)
	if err != nil {
		logger.Warn("cash flow not computed", "err", err)
	} else {
		sum.CashFlow = cash
	}

	opts := xlsx.GridOptions{IncludeZeros: cfg.IncludeZeros, ZeroTol: cfg.ZeroTol}
	if err = xlsx.WriteSolution(cfg.OutputFile, m, soln, sum, opts); err != nil {
		logger.Warn("could not write solution workbook", "file", cfg.OutputFile, "err", err)
		return
	}
	logger.Info("solution workbook written", "file", cfg.OutputFile)
}

//==============================================================================

// run executes one load, build, solve and export cycle and returns the exit
// code. The objective and gap are printed to out.
func run(ctx context.Context, args []string, out, logOut io.Writer) int {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(logOut, err)
		return exitConfig
	}

	runID := uuid.NewString()
	base := newLogger(logOut, cfg)
	relaves.SetLogger(base.With("pkg", "relaves"))
	lpo.SetLogger(base.With("pkg", "lpo"))
	xlsx.SetLogger(base.With("pkg", "xlsx"))
	logger := base.With("run", runID)

	p, err := wpLoadParams(cfg, logger)
	if err != nil {
		logger.Error("cannot load parameters", "err", err)
		return exitConfig
	}

	m, err := relaves.BuildModel(p, cfg.Options)
	if err != nil {
		logger.Error("cannot build model", "err", err)
		return exitConfig
	}
	logger.Info("model built", "model", m.String(), "stats", lpo.GetStatistics(m),
		"water", cfg.Options.ExternalWater, "emissions", cfg.Options.Emissions, "bigM", cfg.Options.BigM)
	if cfg.Backend == backendBnb && len(m.Cols) > largeModelCols {
		logger.Warn("model is large for the in-process solver, consider solver.backend=cbc",
			"cols", len(m.Cols))
	}

	if cfg.MpsFile != "" {
		if err = lpo.WriteMpsFile(cfg.MpsFile, m); err != nil {
			logger.Warn("could not write MPS file", "file", cfg.MpsFile, "err", err)
		} else {
			logger.Info("MPS file written", "file", cfg.MpsFile)
		}
	}

	solver, err := newSolver(cfg)
	if err != nil {
		logger.Error("cannot create solver", "backend", cfg.Backend, "err", err)
		return exitSolver
	}

	startTime := time.Now()
	soln, err := solver.Solve(ctx, m)
	endTime := time.Now()
	if err != nil {
		logger.Error("solver failed", "backend", cfg.Backend, "err", err)
		return exitSolver
	}

	logger.Info("solve finished", "status", soln.Status, "solver", soln.Solver, "nodes", soln.Nodes,
		"elapsed", endTime.Sub(startTime).Round(time.Millisecond))

	if !soln.Status.HasSolution() {
		fmt.Fprintf(out, "\nNo solution: model is %s.\n", soln.Status)
		return exitNoSolution
	}

	fmt.Fprintf(out, "\nOBJECTIVE FUNCTION = %f\n", soln.ObjVal)
	fmt.Fprintf(out, "GAP = %g\n", soln.Gap)
	fmt.Fprintf(out, "STATUS = %s\n\n", soln.Status)
	fmt.Fprintf(out, "Started at:  %s\n", startTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Finished at: %s\n", endTime.Format("2006-01-02 15:04:05"))

	wpExport(cfg, p, m, soln, runID, logger)
	return exitOK
}

// main runs once and exits with the code of the run. An interrupt cancels
// the solve.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
