package relaves

import (
	"testing"

	"github.com/go-opt/relaves/lpo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

func TestCashFlowSingleProduct(t *testing.T) {
	p := scenarioB()
	m, soln := solve(t, p, DefaultOptions())
	require.Equal(t, lpo.StatusOptimal, soln.Status)

	rep, err := CashFlow(p, DefaultOptions(), m, soln)
	require.NoError(t, err)
	require.Len(t, rep.Days, 1)

	day := rep.Days[0]
	assert.Equal(t, 1, day.Day)
	assertMoney(t, "1050.00", day.Sales)
	assertMoney(t, "0.00", day.OverSales)
	assertMoney(t, "0.00", day.Holding)
	assertMoney(t, "2.50", day.Pumping)
	assertMoney(t, "75.00", day.ExternalWater)
	assertMoney(t, "200.00", day.Production)
	assertMoney(t, "0.00", day.Penalty)
	assertMoney(t, "772.50", day.Net)

	assertMoney(t, "772.50", rep.Total.Net)
	assertMoney(t, "772.50", rep.Objective)
	assert.InDelta(t, soln.ObjVal, rep.Objective.InexactFloat64(), 0.01)
}

func TestCashFlowEmissions(t *testing.T) {
	tests := []struct {
		name      string
		emissions EmissionsMode
		penalty   string
		net       string
		excess    string
	}{
		{"daily", EmissionsDaily, "12.00", "28.00", "0.00"},
		{"annual", EmissionsAnnual, "0.00", "40.00", "12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scenarioC(4)
			opts := DefaultOptions()
			opts.Emissions = tt.emissions
			m, soln := solve(t, p, opts)
			require.Equal(t, lpo.StatusOptimal, soln.Status)

			rep, err := CashFlow(p, opts, m, soln)
			require.NoError(t, err)
			assertMoney(t, tt.penalty, rep.Days[0].Penalty)
			assertMoney(t, tt.net, rep.Total.Net)
			assertMoney(t, tt.excess, rep.ExcessPenalty)
			assertMoney(t, "1.00", rep.Fine)
			assertMoney(t, "27.00", rep.Objective)
		})
	}
}

func TestCashFlowGated(t *testing.T) {
	p := scenarioD()
	p.Pmax = 1e3
	p.Pf = 50
	opts := DefaultOptions()
	opts.ExternalWater = WaterGated
	m, soln := solve(t, p, opts)
	require.Equal(t, lpo.StatusOptimal, soln.Status)

	rep, err := CashFlow(p, opts, m, soln)
	require.NoError(t, err)
	assertMoney(t, "57.50", rep.Days[0].ExternalWater)
	assertMoney(t, "-17.50", rep.Objective)
}

func TestCashFlowMultiDay(t *testing.T) {
	p := propertyParams()
	m, soln := solve(t, p, DefaultOptions())
	require.Equal(t, lpo.StatusOptimal, soln.Status)

	rep, err := CashFlow(p, DefaultOptions(), m, soln)
	require.NoError(t, err)
	require.Len(t, rep.Days, p.T)

	sum := decimal.Zero
	for i, day := range rep.Days {
		assert.Equal(t, i+1, day.Day)
		sum = sum.Add(day.Net)

		a := value(t, m, soln, "A", i+1)
		assert.InDelta(t, a, day.Net.InexactFloat64(), 0.05, "day %d", i+1)
	}
	assert.True(t, sum.Equal(rep.Total.Net))
	assert.InDelta(t, soln.ObjVal, rep.Objective.InexactFloat64(), 0.1)
}

func TestCashFlowErrors(t *testing.T) {
	p := scenarioD()
	m, soln := solve(t, p, DefaultOptions())
	require.Equal(t, lpo.StatusInfeasible, soln.Status)

	_, err := CashFlow(p, DefaultOptions(), m, soln)
	assert.Error(t, err)
	_, err = CashFlow(p, DefaultOptions(), m, nil)
	assert.Error(t, err)

	// Options that do not match the model name a missing column.
	p = scenarioB()
	m, soln = solve(t, p, DefaultOptions())
	gated := DefaultOptions()
	gated.ExternalWater = WaterGated
	_, err = CashFlow(p, gated, m, soln)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Q[1]")
}
