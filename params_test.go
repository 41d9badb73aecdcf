package relaves

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalRaw returns a complete raw parameter set with T=2, M=1, K=1 that
// only holds required keys.
func minimalRaw() RawParams {
	raw := NewRawParams()
	for k, v := range map[string]float64{"T": 2, "M": 1, "K": 1, "Vmax": 100, "L0": 5, "Mbig": 1e3} {
		raw.Scalars[k] = v
	}
	for _, k := range []string{"a", "w", "g", "u", "n", "Jmin", "Ca", "Cp"} {
		raw.Product[k] = map[int]float64{1: 1}
	}
	raw.Product["Jmax"] = map[int]float64{1: 7}
	for _, k := range []string{"Hmax", "Qmax", "F", "I0", "Cv", "Cf"} {
		raw.Pond[k] = map[int]float64{1: 0.5}
	}
	return raw
}

func TestNewParamsDefaults(t *testing.T) {
	p, err := NewParams(minimalRaw())
	require.NoError(t, err)

	assert.Equal(t, 2, p.T)
	assert.Equal(t, DefaultB, p.B)
	assert.Equal(t, DefaultPenalty, p.Penalty)
	assert.Equal(t, DefaultP, p.P)
	assert.Equal(t, DefaultPmax, p.Pmax)
	assert.Equal(t, DefaultN, p.N)
	assert.Zero(t, p.Pf+p.Cw+p.Mv+p.Mf)
	assert.Equal(t, 0.0, p.Products[0].IM0)
	assert.Equal(t, [][]float64{{14, 14}}, p.Demand, "demand falls back to 2*Jmax")
	assert.Equal(t, 100.0, p.Vmax)
	assert.Equal(t, 5.0, p.L0)
}

func TestNewParamsAliases(t *testing.T) {
	raw := minimalRaw()
	delete(raw.Product, "Ca")
	delete(raw.Product, "Cp")
	delete(raw.Pond, "Cv")
	delete(raw.Pond, "Cf")
	raw.Product["m"] = map[int]float64{1: 0.2}
	raw.Product["c"] = map[int]float64{1: 20}
	raw.Pond["C"] = map[int]float64{1: 0.1}
	raw.Pond["f"] = map[int]float64{1: 3}
	raw.Scalars["mu"] = 4
	raw.Scalars["cw"] = 0.5

	p, err := NewParams(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.2, p.Products[0].Ca)
	assert.Equal(t, 20.0, p.Products[0].Cp)
	assert.Equal(t, 0.1, p.Ponds[0].Cv)
	assert.Equal(t, 3.0, p.Ponds[0].Cf)
	assert.Equal(t, 4.0, p.Penalty)
	assert.Equal(t, 0.5, p.Cw)
}

func TestNewParamsMissing(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*RawParams)
		key   string
		index []int
	}{
		{"dimension", func(r *RawParams) { delete(r.Scalars, "K") }, "K", nil},
		{"scalar", func(r *RawParams) { delete(r.Scalars, "Mbig") }, "Mbig", nil},
		{"product table", func(r *RawParams) { delete(r.Product, "g") }, "g", []int{1}},
		{"product entry", func(r *RawParams) {
			r.Scalars["M"] = 2
			for k := range r.Product {
				r.Product[k][2] = 1
			}
			delete(r.Product["w"], 2)
		}, "w", []int{2}},
		{"pond table", func(r *RawParams) { delete(r.Pond, "Cf") }, "Cf", []int{1}},
		{"partial IM0", func(r *RawParams) {
			r.Scalars["M"] = 2
			for k := range r.Product {
				r.Product[k][2] = 1
			}
			r.Product["IM0"] = map[int]float64{1: 3}
		}, "IM0", []int{2}},
		{"partial demand", func(r *RawParams) {
			r.Demand[1] = map[int]float64{1: 10}
		}, "d", []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := minimalRaw()
			tt.edit(&raw)

			_, err := NewParams(raw)
			var missing *MissingParameterError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, tt.key, missing.Key)
			assert.Equal(t, tt.index, missing.Index)
		})
	}
}

func TestNewParamsInvalidDimension(t *testing.T) {
	for _, v := range []float64{0, -1, 1.5} {
		raw := minimalRaw()
		raw.Scalars["T"] = v

		_, err := NewParams(raw)
		var dim *InvalidDimensionError
		require.True(t, errors.As(err, &dim), "T = %g gave %v", v, err)
		assert.Equal(t, "T", dim.Key)
		assert.Equal(t, v, dim.Value)
	}
}

func TestNewParamsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		edit func(*RawParams)
		key  string
	}{
		{"zero volume", func(r *RawParams) { r.Product["n"][1] = 0 }, "n"},
		{"inverted bounds", func(r *RawParams) { r.Product["Jmin"][1] = 9 }, "Jmin"},
		{"negative capacity", func(r *RawParams) { r.Pond["Hmax"][1] = -1 }, "Hmax"},
		{"negative scalar", func(r *RawParams) { r.Scalars["Vmax"] = -5 }, "Vmax"},
		{"negative demand", func(r *RawParams) { r.Demand[1] = map[int]float64{1: 1, 2: -1} }, "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := minimalRaw()
			tt.edit(&raw)

			_, err := NewParams(raw)
			var invalid *InvalidParameterError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.key, invalid.Key)
		})
	}
}

func TestValidateTyped(t *testing.T) {
	p := scenarioB()
	require.NoError(t, p.Validate())

	p.Products = append(p.Products, Product{N: 1})
	assert.Error(t, p.Validate())

	p = scenarioB()
	p.Demand[0] = nil
	assert.Error(t, p.Validate())

	p = scenarioB()
	p.K = 0
	var dim *InvalidDimensionError
	assert.True(t, errors.As(p.Validate(), &dim))

	var nilParams *Params
	assert.Error(t, nilParams.Validate())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "missing parameter d[1,3]",
		(&MissingParameterError{Key: "d", Index: []int{1, 3}}).Error())
	assert.Equal(t, "missing parameter Vmax", (&MissingParameterError{Key: "Vmax"}).Error())
	assert.Equal(t, "invalid dimension M = 0, must be a positive integer",
		(&InvalidDimensionError{Key: "M", Value: 0}).Error())
	assert.Equal(t, "invalid parameter n[2] = 0: must be positive",
		(&InvalidParameterError{Key: "n", Index: []int{2}, Value: 0, Reason: "must be positive"}).Error())
}

func TestBuiltInParamSets(t *testing.T) {
	demo, err := NewParams(DemoParams())
	require.NoError(t, err)
	assert.Equal(t, 20, demo.T)
	assert.Equal(t, 3, demo.M)
	assert.Equal(t, 2, demo.K)
	assert.Equal(t, 0.2, demo.Products[0].Ca)
	assert.Equal(t, 220.0, demo.Demand[2][19])

	ref, err := NewParams(RealParams())
	require.NoError(t, err)
	assert.Equal(t, 365, ref.T)
	assert.Equal(t, 110.0*365, ref.B)
	assert.Equal(t, 6361.81, ref.Demand[1][364])
	assert.Equal(t, 69.9, ref.Ponds[0].Cf)

	// Each call returns a fresh value.
	a, b := DemoParams(), DemoParams()
	a.Scalars["T"] = 1
	assert.Equal(t, 20.0, b.Scalars["T"])
}
