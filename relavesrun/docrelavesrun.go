/*
Relavesrun loads the parameters of the tailings water-management model, builds
the MILP, solves it and writes the solution workbook.

Usage:

	relavesrun [flags]

Parameters are read from params.file, a workbook or a .yaml/.json file. When
params.file is empty, or the file cannot be read, the literal set named by
params.fallback is used instead: "reales" for the reference operation or
"prueba" for the artificial set. A file that is read but incomplete stops the
run.

On an optimal or feasible solution the objective value and the gap are
printed, and the solution is written to output.file with its daily cash flow.
A failure to write the workbook is logged and does not change the exit code.

Settings are taken from flags, then RELAVES_* environment variables (dots
become underscores, e.g. RELAVES_SOLVER_BACKEND), then the file given with
--config, then the defaults:

	params.file            parametros_reales.xlsx
	params.fallback        reales
	output.file            solution.xlsx
	output.include_zeros   true
	output.zero_tol        1e-12
	output.mps             ""       write the model as MPS before solving
	solver.backend         cbc      bnb, cbc, cplex, or gpx when built with -tags cplex
	solver.path            ""       cbc or cplex executable, from PATH when empty
	solver.time_limit      10m
	solver.gap             0
	solver.max_nodes       0        bnb only
	model.external_water   residual residual or gated
	model.emissions        daily    daily or annual
	model.big_m            product  product or global
	model.pump_cap         true
	model.annual_link      false
	log.level              info
	log.no_color           false

The bnb backend solves in process and suits models of a few hundred columns,
such as the artificial set cut to a few days. The full artificial set and the
one-year reference set need cbc or cplex; with bnb they end at
solver.time_limit without a solution.

Exit codes are 0 for a solution, 1 for bad settings, parameters or model, 2
when the solver fails, and 3 when the model has no solution or a limit was
reached without one.
*/
package main
