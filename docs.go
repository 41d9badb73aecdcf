// 01   Oct. 18, 2026   Initial version
// 02   Oct. 18, 2026   Variant options, cash-flow report and parameter files

/*
Package relaves builds the mixed-integer linear program of a mine-tailings
water-management system. The model decides daily production, the water routed
between a reservoir, tailings ponds and external purchases, and pump
activations, subject to capacity, budget and emissions constraints, and
maximizes cumulative net cash flow.

The package covers one batch pipeline:

	- load parameters (NewParams from a RawParams, LoadParamsFile, or the
	  built-in DemoParams and RealParams sets)
	- build the model (BuildModel)
	- solve it with any lpo.Solver
	- report the daily cash flow of the solution (CashFlow)

Writing the solution to a workbook is done by package xlsx, and the
executable in relavesrun ties the steps together.

Parameters

RawParams is the untyped form produced by every loader. Tables are indexed
from 1. The keys are:

	dimensions       T (days), M (products), K (ponds)
	required scalars Vmax, L0, Mbig
	optional scalars B=0, m|mu=0, P=0, Pmax=1e9, N=1e12, Pf=0, cw=0, mv=0, mf=0
	per product      a, w, g, u, n, Jmin, Jmax, m|Ca, c|Cp, and IM0 (0 when absent)
	per pond         Hmax, Qmax, F, I0, C|Cv, f|Cf
	demand           d[i,t], twice Jmax[i] on every day when absent

NewParams reports a missing required entry with MissingParameterError, a bad
dimension with InvalidDimensionError and a value outside its domain with
InvalidParameterError; use errors.As to inspect them.

Model Variants

Options selects among the mutually exclusive modeling choices:

	ExternalWater  WaterResidual: E[t] = D[t] - sum_k G[k,t]
	               WaterGated:    E[t] <= Mbig*Q[t], fixed cost Pf per day with Q[t] = 1
	Emissions      EmissionsDaily:  excess V[t], penalized in A[t]
	               EmissionsAnnual: one excess V, penalized once in the objective
	BigM           BigMPerProduct (see BigM) or BigMGlobal (Mbig)
	PumpCap        G[k,t] <= I[k,t]
	AnnualEmissionsLink  sum_t sum_i w_i*x[i,t] - B <= Mbig*R

The objective always carries the reuse bonus cw*sum G, the excess penalty
mv*V and the fine mf*R; with the default zero coefficients they vanish.
*/
package relaves
