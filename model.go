//==============================================================================
// model: MILP formulation of the tailings water-management problem
// 01   Oct. 18, 2026   Canonical formulation with explicit variant options

// Days are indexed t = 1..T, products i = 1..M and ponds k = 1..K. Variables
// are named base[index...], e.g. G[2,15] is the flow pumped from pond 2 on
// day 15. Row names follow the constraint families below.

package relaves

import (
	"fmt"
	"math"

	"github.com/go-opt/relaves/lpo"
	"github.com/pkg/errors"
)

// ModelName is the name given to every model built by BuildModel.
const ModelName = "relaves"

// BigM returns the per-product big-M of the demand saturation linkage,
//
//	M_i = max(max(IM0_i, min(N/n_i, IM0_i + (T-1)*Jmax_i)) + Jmax_i, max_t d_i,t)
//
// The inventory carried into a day is IM0_i on the first day and after that
// at most what storage holds and at most what the preceding days could have
// produced, so M_i bounds IM[i,t-1] + x[i,t], hence S + So, and d - S, at
// every feasible point.
func BigM(p *Params) []float64 {
	out := make([]float64, p.M)
	for i, pr := range p.Products {
		m := math.Max(pr.IM0, math.Min(p.N/pr.N, pr.IM0+float64(p.T-1)*pr.Jmax)) + pr.Jmax
		for _, d := range p.Demand[i] {
			m = math.Max(m, d)
		}
		out[i] = m
	}
	return out
}

// bounds holds upper bounds implied by the rows of the model. They are set on
// the columns and used in place of Mbig wherever they are tighter, which keeps
// the coefficient range of the model small.
type bounds struct {
	level  float64   // L[t]: L0 + T*(sum_k pump_k + ext)
	water  float64   // D[t]: sum_i a_i*Jmax_i
	pond   []float64 // I[k,t]: I0_k + T*F_k*water
	pump   []float64 // G[k,t]: min(Qmax_k, inflow and stock of pond k)
	ext    float64   // E[t]
	stock  []float64 // IM[i,t]: min(N/n_i, IM0_i + T*Jmax_i)
	emis   float64   // daily emissions: sum_i w_i*Jmax_i
	excess float64   // V[t] and V: max(0, emis - B)
}

func impliedBounds(p *Params, opts Options) bounds {
	var bd bounds
	for _, pr := range p.Products {
		bd.water += pr.A * pr.Jmax
		bd.emis += pr.W * pr.Jmax
		bd.stock = append(bd.stock, math.Min(p.N/pr.N, pr.IM0+float64(p.T)*pr.Jmax))
	}
	bd.excess = math.Max(0, bd.emis-p.B)

	for _, pd := range p.Ponds {
		inflow := pd.F * bd.water
		bd.pond = append(bd.pond, pd.I0+float64(p.T)*inflow)
		// I[k,t] >= 0 gives G[k,t] <= I[k,t-1] + U[k,t].
		prev := math.Max(pd.I0, math.Min(pd.Hmax, pd.I0+float64(p.T-1)*inflow))
		bd.pump = append(bd.pump, math.Min(pd.Qmax, prev+inflow))
	}

	// Residual water is D - sum_k G; gated water is bounded by the reservoir.
	bd.ext = bd.water
	if opts.ExternalWater == WaterGated {
		bd.ext = p.Vmax + bd.water
	}
	if p.P > 0 {
		bd.ext = math.Min(bd.ext, p.Pmax/p.P)
	}

	// The reservoir gains at most the pumped and bought water each day.
	inflow := bd.ext
	for _, g := range bd.pump {
		inflow += g
	}
	bd.level = p.L0 + float64(p.T)*inflow
	return bd
}

// builder adds columns and rows to a model and keeps the first error, so that
// the formulation reads as a list of families.
type builder struct {
	p    *Params
	opts Options
	bd   bounds
	m    *lpo.Model
	err  error

	// Column indices, [t] or [k][t] or [i][t], all 0-based.
	L, D, E, Q, V, A []int
	I, G, U, Y       [][]int
	X, IM, S, So, Z  [][]int
	Vyear, R         int
}

func (b *builder) col(base string, idx []int, colType string, lo, up float64) int {
	if b.err != nil {
		return -1
	}
	j, err := b.m.AddCol(base, idx, colType, lo, up)
	if err != nil {
		b.err = errors.Wrap(err, "failed to add column")
	}
	return j
}

func (b *builder) row(name string, lhs *lpo.Expr, sense string, rhs *lpo.Expr) {
	if b.err != nil {
		return
	}
	if _, err := b.m.AddConstr(name, lhs, sense, rhs); err != nil {
		b.err = errors.Wrap(err, "failed to add row")
	}
}

// capCols lowers the upper bound of the given columns to up.
func (b *builder) capCols(cols []int, up float64) {
	if b.err != nil {
		return
	}
	for _, j := range cols {
		b.m.Cols[j].BndUp = math.Min(b.m.Cols[j].BndUp, up)
	}
}

// bigM returns the smaller of Mbig and an implied bound.
func (b *builder) bigM(implied float64) float64 {
	return math.Min(b.p.Mbig, implied)
}

// days creates one non-negative column per day.
func (b *builder) days(base string, colType string, lo, up float64) []int {
	out := make([]int, b.p.T)
	for t := range out {
		out[t] = b.col(base, []int{t + 1}, colType, lo, up)
	}
	return out
}

// grid creates one column per (n, t), with n = 1..size.
func (b *builder) grid(base string, size int, colType string, lo, up float64) [][]int {
	out := make([][]int, size)
	for n := range out {
		out[n] = make([]int, b.p.T)
		for t := range out[n] {
			out[n][t] = b.col(base, []int{n + 1, t + 1}, colType, lo, up)
		}
	}
	return out
}

// BuildModel validates the parameters and returns the MILP that maximizes
// cumulative net cash flow. It has no side effects and gives the same model,
// with the same column and row order, for the same input.
// In case of failure, function returns an error.
func BuildModel(p *Params, opts Options) (*lpo.Model, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "BuildModel received invalid parameters")
	}

	b := &builder{p: p, opts: opts, bd: impliedBounds(p, opts), m: lpo.NewModel(ModelName),
		Vyear: -1, R: -1}
	b.addColumns()
	b.addWaterRows()
	b.addProductionRows()
	b.addEmissionsRows()
	b.addSalesRows()
	b.addCashFlowRows()
	b.setObjective()

	if b.err != nil {
		return nil, errors.Wrap(b.err, "BuildModel failed")
	}

	log().Debug("model built", "model", b.m.String(), "water", opts.ExternalWater,
		"emissions", opts.Emissions, "bigM", opts.BigM, "pumpCap", opts.PumpCap)
	return b.m, nil
}

//==============================================================================
// VARIABLES
//==============================================================================

func (b *builder) addColumns() {
	p, inf := b.p, lpo.Plinfy

	b.L = b.days("L", lpo.ColReal, 0, b.bd.level)
	b.I = b.grid("I", p.K, lpo.ColReal, 0, inf)
	b.G = b.grid("G", p.K, lpo.ColReal, 0, inf)
	for k := range b.G {
		b.capCols(b.I[k], b.bd.pond[k])
		b.capCols(b.G[k], b.bd.pump[k])
	}
	b.D = b.days("D", lpo.ColReal, 0, inf)
	b.U = b.grid("U", p.K, lpo.ColReal, 0, inf)
	b.E = b.days("E", lpo.ColReal, 0, b.bd.ext)
	if b.opts.ExternalWater == WaterGated {
		b.Q = b.days("Q", lpo.ColInt, 0, 1)
	}
	b.Y = b.grid("y", p.K, lpo.ColInt, 0, 1)

	b.X = b.grid("x", p.M, lpo.ColReal, 0, inf)
	b.IM = b.grid("IM", p.M, lpo.ColReal, 0, inf)
	for i := range b.IM {
		b.capCols(b.IM[i], b.bd.stock[i])
	}
	b.S = b.grid("S", p.M, lpo.ColReal, 0, inf)
	b.So = b.grid("So", p.M, lpo.ColReal, 0, inf)
	b.Z = b.grid("z", p.M, lpo.ColInt, 0, 1)

	if b.opts.Emissions == EmissionsAnnual {
		b.Vyear = b.col("V", nil, lpo.ColReal, 0, inf)
	} else {
		b.V = b.days("V", lpo.ColReal, 0, inf)
	}
	b.R = b.col("R", nil, lpo.ColInt, 0, 1)

	b.A = b.days("A", lpo.ColReal, -inf, inf)
}

// excess returns the emissions excess variable of day t (0-based).
func (b *builder) excess(t int) int {
	if b.opts.Emissions == EmissionsAnnual {
		return b.Vyear
	}
	return b.V[t]
}

// water returns sum_i a_i * x[i,t] for day t (0-based).
func (b *builder) water(t int) *lpo.Expr {
	e := lpo.NewExpr()
	for i, pr := range b.p.Products {
		e.Add(b.X[i][t], pr.A)
	}
	return e
}

// pumped returns sum_k G[k,t] for day t (0-based).
func (b *builder) pumped(t int) *lpo.Expr {
	e := lpo.NewExpr()
	for k := range b.p.Ponds {
		e.Add(b.G[k][t], 1)
	}
	return e
}

// pumpCost returns sum_k (Cv_k*G[k,t] + Cf_k*y[k,t]) for day t (0-based).
func (b *builder) pumpCost(t int) *lpo.Expr {
	e := lpo.NewExpr()
	for k, pd := range b.p.Ponds {
		e.Add(b.G[k][t], pd.Cv).Add(b.Y[k][t], pd.Cf)
	}
	return e
}

//==============================================================================
// CONSTRAINTS
//==============================================================================

// addWaterRows adds the reservoir and pond balances, process water, capacity,
// routing, pumping, external water and budget families.
func (b *builder) addWaterRows() {
	p := b.p

	for t := 0; t < p.T; t++ {
		// L[t] = L[t-1] + sum_k G[k,t] + E[t] - D[t]
		rhs := b.pumped(t).Add(b.E[t], 1).Add(b.D[t], -1)
		name := fmt.Sprintf("bal_L_%d", t+1)
		if t == 0 {
			rhs.AddConst(p.L0)
			name = "bal_L_t1"
		} else {
			rhs.Add(b.L[t-1], 1)
		}
		b.row(name, lpo.Var(b.L[t]), lpo.RowE, rhs)
	}

	for k, pd := range p.Ponds {
		for t := 0; t < p.T; t++ {
			// I[k,t] = I[k,t-1] + U[k,t] - G[k,t]
			rhs := lpo.Var(b.U[k][t]).Add(b.G[k][t], -1)
			name := fmt.Sprintf("bal_I_%d_%d", k+1, t+1)
			if t == 0 {
				rhs.AddConst(pd.I0)
				name = fmt.Sprintf("bal_I_%d_t1", k+1)
			} else {
				rhs.Add(b.I[k][t-1], 1)
			}
			b.row(name, lpo.Var(b.I[k][t]), lpo.RowE, rhs)
		}
	}

	for t := 0; t < p.T; t++ {
		b.row(fmt.Sprintf("agua_faena_%d", t+1), lpo.Var(b.D[t]), lpo.RowE, b.water(t))
	}

	for t := 0; t < p.T; t++ {
		b.row(fmt.Sprintf("cap_embalse_%d", t+1), lpo.Var(b.L[t]), lpo.RowL, lpo.Constant(p.Vmax))
	}
	for k, pd := range p.Ponds {
		for t := 0; t < p.T; t++ {
			b.row(fmt.Sprintf("cap_relave_%d_%d", k+1, t+1), lpo.Var(b.I[k][t]), lpo.RowL, lpo.Constant(pd.Hmax))
		}
	}

	for k, pd := range p.Ponds {
		for t := 0; t < p.T; t++ {
			b.row(fmt.Sprintf("T_def_%d_%d", k+1, t+1), lpo.Var(b.U[k][t]), lpo.RowE,
				lpo.NewExpr().Add(b.D[t], pd.F))
			// G <= Qmax*y, with Qmax lowered to what the pond can deliver.
			b.row(fmt.Sprintf("B_Qmax_%d_%d", k+1, t+1), lpo.Var(b.G[k][t]), lpo.RowL,
				lpo.NewExpr().Add(b.Y[k][t], b.bd.pump[k]))
			if b.opts.PumpCap {
				b.row(fmt.Sprintf("B_le_I_%d_%d", k+1, t+1), lpo.Var(b.G[k][t]), lpo.RowL,
					lpo.Var(b.I[k][t]))
			}
		}
	}

	for t := 0; t < p.T; t++ {
		if b.opts.ExternalWater == WaterGated {
			b.row(fmt.Sprintf("Q_le_MQ_%d", t+1), lpo.Var(b.E[t]), lpo.RowL,
				lpo.NewExpr().Add(b.Q[t], b.bigM(b.bd.ext)))
			continue
		}
		rhs := lpo.Var(b.D[t]).AddExpr(b.pumped(t), -1)
		b.row(fmt.Sprintf("E_def_%d", t+1), lpo.Var(b.E[t]), lpo.RowE, rhs)
	}

	for t := 0; t < p.T; t++ {
		lhs := b.pumpCost(t).Add(b.E[t], p.P)
		b.row(fmt.Sprintf("presupuesto_%d", t+1), lhs, lpo.RowL, lpo.Constant(p.Pmax))
	}
}

func (b *builder) addProductionRows() {
	for i, pr := range b.p.Products {
		for t := 0; t < b.p.T; t++ {
			b.row(fmt.Sprintf("xmin_%d_%d", i+1, t+1), lpo.Var(b.X[i][t]), lpo.RowG, lpo.Constant(pr.Jmin))
			b.row(fmt.Sprintf("xmax_%d_%d", i+1, t+1), lpo.Var(b.X[i][t]), lpo.RowL, lpo.Constant(pr.Jmax))
		}
	}
}

// addEmissionsRows adds the excess definition, its big-M activation of R and,
// when selected, the annual link.
func (b *builder) addEmissionsRows() {
	p := b.p

	emissions := func(t int) *lpo.Expr {
		e := lpo.NewExpr()
		for i, pr := range p.Products {
			e.Add(b.X[i][t], pr.W)
		}
		return e
	}

	for t := 0; t < p.T; t++ {
		b.row(fmt.Sprintf("V_def_%d", t+1), lpo.Var(b.excess(t)), lpo.RowG,
			emissions(t).AddConst(-p.B))
	}

	mv := b.bigM(b.bd.excess)
	if b.opts.Emissions == EmissionsAnnual {
		b.row("V_le_MR", lpo.Var(b.Vyear), lpo.RowL, lpo.NewExpr().Add(b.R, mv))
	} else {
		for t := 0; t < p.T; t++ {
			b.row(fmt.Sprintf("V_le_MR_%d", t+1), lpo.Var(b.V[t]), lpo.RowL,
				lpo.NewExpr().Add(b.R, mv))
		}
	}

	if b.opts.AnnualEmissionsLink {
		total := lpo.NewExpr()
		for t := 0; t < p.T; t++ {
			total.AddExpr(emissions(t), 1)
		}
		total.AddConst(-p.B)
		b.row("emis_anual", total, lpo.RowL,
			lpo.NewExpr().Add(b.R, b.bigM(math.Max(0, float64(p.T)*b.bd.emis-p.B))))
	}
}

// addSalesRows adds the demand split, saturation linkage, inventory flow and
// storage capacity families.
func (b *builder) addSalesRows() {
	p := b.p

	bigM := BigM(p)
	if b.opts.BigM == BigMGlobal {
		for i := range bigM {
			bigM[i] = p.Mbig
		}
	}

	for i, pr := range p.Products {
		for t := 0; t < p.T; t++ {
			d := p.Demand[i][t]

			b.row(fmt.Sprintf("H_in_le_d_%d_%d", i+1, t+1), lpo.Var(b.S[i][t]), lpo.RowL, lpo.Constant(d))

			// S + So <= IM[i,t-1] + x[i,t]
			avail := lpo.Var(b.X[i][t])
			if t == 0 {
				avail.AddConst(pr.IM0)
			} else {
				avail.Add(b.IM[i][t-1], 1)
			}
			b.row(fmt.Sprintf("ventas_disp_%d_%d", i+1, t+1),
				lpo.Var(b.S[i][t]).Add(b.So[i][t], 1), lpo.RowL, avail)

			// So <= M_i*z and d - S <= M_i*(1 - z)
			b.row(fmt.Sprintf("So_le_Mz_%d_%d", i+1, t+1), lpo.Var(b.So[i][t]), lpo.RowL,
				lpo.NewExpr().Add(b.Z[i][t], bigM[i]))
			b.row(fmt.Sprintf("saturate_S_%d_%d", i+1, t+1),
				lpo.Constant(d).Add(b.S[i][t], -1), lpo.RowL,
				lpo.Constant(bigM[i]).Add(b.Z[i][t], -bigM[i]))
		}
	}

	for i, pr := range p.Products {
		for t := 0; t < p.T; t++ {
			// IM[i,t] = IM[i,t-1] + x[i,t] - So[i,t] - S[i,t]
			rhs := lpo.Var(b.X[i][t]).Add(b.So[i][t], -1).Add(b.S[i][t], -1)
			name := fmt.Sprintf("IM_flow_%d_%d", i+1, t+1)
			if t == 0 {
				rhs.AddConst(pr.IM0)
				name = fmt.Sprintf("IM_init_%d", i+1)
			} else {
				rhs.Add(b.IM[i][t-1], 1)
			}
			b.row(name, lpo.Var(b.IM[i][t]), lpo.RowE, rhs)
		}
	}

	for t := 0; t < p.T; t++ {
		lhs := lpo.NewExpr()
		for i, pr := range p.Products {
			lhs.Add(b.IM[i][t], pr.N)
		}
		b.row(fmt.Sprintf("cap_almacen_%d", t+1), lhs, lpo.RowL, lpo.Constant(p.N))
	}
}

// addCashFlowRows defines A[t] as sales minus every daily cost.
func (b *builder) addCashFlowRows() {
	p := b.p

	for t := 0; t < p.T; t++ {
		rhs := lpo.NewExpr()
		for i, pr := range p.Products {
			rhs.Add(b.S[i][t], pr.G)
			rhs.Add(b.So[i][t], pr.U)
			rhs.Add(b.IM[i][t], -pr.Ca)
			rhs.Add(b.X[i][t], -pr.Cp)
		}
		rhs.AddExpr(b.pumpCost(t), -1)
		rhs.Add(b.E[t], -p.P)
		if b.opts.ExternalWater == WaterGated {
			rhs.Add(b.Q[t], -p.Pf)
		}
		if b.opts.Emissions == EmissionsDaily {
			rhs.Add(b.V[t], -p.Penalty)
		}
		b.row(fmt.Sprintf("flujo_caja_%d", t+1), lpo.Var(b.A[t]), lpo.RowE, rhs)
	}
}

// setObjective maximizes sum_t A[t] plus the reuse bonus, minus the excess
// penalty and the one-time fine. With an annual excess the emissions penalty
// is charged here once instead of in A[t], so V costs Mv + Penalty.
func (b *builder) setObjective() {
	if b.err != nil {
		return
	}
	p := b.p

	obj := lpo.NewExpr()
	for t := 0; t < p.T; t++ {
		obj.Add(b.A[t], 1)
	}
	for t := 0; t < p.T; t++ {
		obj.AddExpr(b.pumped(t), p.Cw)
	}
	if b.opts.Emissions == EmissionsAnnual {
		obj.Add(b.Vyear, -(p.Mv + p.Penalty))
	} else {
		for t := 0; t < p.T; t++ {
			obj.Add(b.V[t], -p.Mv)
		}
	}
	obj.Add(b.R, -p.Mf)

	b.m.SetObjective(obj, true)
}
