package relaves

import (
	"github.com/go-opt/relaves/lpo"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DayCashFlow is the breakdown of the net cash flow A[t] of one day, in
// currency units rounded to cents. Costs are positive amounts.
type DayCashFlow struct {
	Day           int
	Sales         decimal.Decimal // sales within demand
	OverSales     decimal.Decimal // sales above demand
	Holding       decimal.Decimal // inventory holding
	Pumping       decimal.Decimal // variable and fixed pumping
	ExternalWater decimal.Decimal // external water, with the fixed cost in the gated variant
	Production    decimal.Decimal
	Penalty       decimal.Decimal // emissions penalty, daily variant only
	Net           decimal.Decimal
}

// CashFlowReport holds the daily breakdown, its totals, and the terms of the
// objective that are not part of any day.
type CashFlowReport struct {
	Days  []DayCashFlow
	Total DayCashFlow

	ReuseBonus    decimal.Decimal // Cw * sum of G
	ExcessPenalty decimal.Decimal // Mv * excess, plus m * V in the annual variant
	Fine          decimal.Decimal // Mf * R
	Objective     decimal.Decimal // Total.Net + ReuseBonus - ExcessPenalty - Fine
}

const cents = 2

// CashFlow recomputes the cash flow of every day from a solution of the model
// built by BuildModel with the same parameters and options.
// In case of failure, function returns an error.
func CashFlow(p *Params, opts Options, m *lpo.Model, soln *lpo.Soln) (*CashFlowReport, error) {
	if soln == nil || !soln.Status.HasSolution() {
		return nil, errors.New("CashFlow needs a solution with values")
	}

	var err error
	val := func(base string, idx ...int) decimal.Decimal {
		if err != nil {
			return decimal.Zero
		}
		v, ok := soln.Value(m, lpo.ColName(base, idx...))
		if !ok {
			err = errors.Errorf("solution has no column %s", lpo.ColName(base, idx...))
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	}
	amount := func(price float64, qty decimal.Decimal) decimal.Decimal {
		return decimal.NewFromFloat(price).Mul(qty)
	}

	rep := &CashFlowReport{Days: make([]DayCashFlow, p.T)}
	pumped := decimal.Zero

	for t := 1; t <= p.T; t++ {
		day := DayCashFlow{Day: t}
		for i, pr := range p.Products {
			day.Sales = day.Sales.Add(amount(pr.G, val("S", i+1, t)))
			day.OverSales = day.OverSales.Add(amount(pr.U, val("So", i+1, t)))
			day.Holding = day.Holding.Add(amount(pr.Ca, val("IM", i+1, t)))
			day.Production = day.Production.Add(amount(pr.Cp, val("x", i+1, t)))
		}
		for k, pd := range p.Ponds {
			g := val("G", k+1, t)
			pumped = pumped.Add(g)
			day.Pumping = day.Pumping.Add(amount(pd.Cv, g)).Add(amount(pd.Cf, val("y", k+1, t)))
		}
		day.ExternalWater = amount(p.P, val("E", t))
		if opts.ExternalWater == WaterGated {
			day.ExternalWater = day.ExternalWater.Add(amount(p.Pf, val("Q", t)))
		}
		if opts.Emissions == EmissionsDaily {
			day.Penalty = amount(p.Penalty, val("V", t))
		}

		day.round()
		day.Net = day.Sales.Add(day.OverSales).
			Sub(day.Holding).Sub(day.Pumping).Sub(day.ExternalWater).
			Sub(day.Production).Sub(day.Penalty)

		rep.Days[t-1] = day
		rep.Total.add(day)
	}

	rep.ReuseBonus = amount(p.Cw, pumped).Round(cents)
	if opts.Emissions == EmissionsAnnual {
		rep.ExcessPenalty = amount(p.Mv+p.Penalty, val("V"))
	} else {
		for t := 1; t <= p.T; t++ {
			rep.ExcessPenalty = rep.ExcessPenalty.Add(amount(p.Mv, val("V", t)))
		}
	}
	rep.ExcessPenalty = rep.ExcessPenalty.Round(cents)
	rep.Fine = amount(p.Mf, val("R")).Round(cents)
	rep.Objective = rep.Total.Net.Add(rep.ReuseBonus).Sub(rep.ExcessPenalty).Sub(rep.Fine)

	if err != nil {
		return nil, errors.Wrap(err, "CashFlow failed")
	}
	return rep, nil
}

func (d *DayCashFlow) round() {
	d.Sales = d.Sales.Round(cents)
	d.OverSales = d.OverSales.Round(cents)
	d.Holding = d.Holding.Round(cents)
	d.Pumping = d.Pumping.Round(cents)
	d.ExternalWater = d.ExternalWater.Round(cents)
	d.Production = d.Production.Round(cents)
	d.Penalty = d.Penalty.Round(cents)
}

func (d *DayCashFlow) add(o DayCashFlow) {
	d.Sales = d.Sales.Add(o.Sales)
	d.OverSales = d.OverSales.Add(o.OverSales)
	d.Holding = d.Holding.Add(o.Holding)
	d.Pumping = d.Pumping.Add(o.Pumping)
	d.ExternalWater = d.ExternalWater.Add(o.ExternalWater)
	d.Production = d.Production.Add(o.Production)
	d.Penalty = d.Penalty.Add(o.Penalty)
	d.Net = d.Net.Add(o.Net)
}
