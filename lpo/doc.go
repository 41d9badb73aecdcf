/*
Package lpo holds a linear or mixed-integer program as a list of rows, columns
and non-zero elements, and solves it through one of several backends.

A model is built column by column with AddCol and row by row with AddConstr,
from linear expressions (Expr) that may hold variables and constants on either
side of the relation:

	m := lpo.NewModel("example")
	x, _ := m.AddCol("x", nil, lpo.ColReal, 0, lpo.Plinfy)
	y, _ := m.AddCol("y", []int{1}, lpo.ColInt, 0, 1)
	m.AddConstr("cap", lpo.Var(x), lpo.RowL, lpo.NewExpr().Add(y, 10))
	m.SetObjective(lpo.NewExpr().Add(x, 1).Add(y, -2), true)

Rows have type L, E or G, as in MPS files. Columns have type R (real) or I
(integer); a binary is an integer column with bounds [0, 1]. Bounds whose
magnitude is at least Plinfy are infinite.

Solvers

All backends implement Solver. Infeasible, unbounded and limit outcomes are
returned as a Status in the solution, not as errors.

	BnbSolver    branch-and-bound over the gonum simplex, in process
	CoinSolver   the Coin-OR cbc binary, through an MPS file
	CplexSolver  the interactive cplex binary, through an MPS and a command file
	GpxSolver    Cplex in process through gpx, only with the "cplex" build tag

Inspection

WriteMps and WriteMpsFile write the model in free MPS format. CalcLhs,
CalcConViolation, Residuals and CheckPoint evaluate the rows at a point.
GetStatistics summarizes the size of the model. DelEmptyRows removes rows
without elements.

Logging

The package logs through log/slog. SetLogger replaces the logger; by default
the slog default logger is used.
*/
package lpo
