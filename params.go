//==============================================================================
// params: parameters of the tailings water-management model
// 01   Oct. 18, 2026   Typed parameters, raw mapping form and validation

package relaves

import (
	"math"

	"github.com/pkg/errors"
)

// Defaults of the optional scalars. Every other scalar is required.
const (
	DefaultB       = 0.0  // emissions threshold
	DefaultPenalty = 0.0  // penalty per unit of emissions excess (m or mu)
	DefaultP       = 0.0  // external water cost per m3
	DefaultPmax    = 1e9  // daily budget for pumping and external water
	DefaultN       = 1e12 // storage volume cap
	DefaultPf      = 0.0  // fixed cost of a day with external water (gated variant)
	DefaultCw      = 0.0  // bonus per m3 pumped back from the ponds
	DefaultMv      = 0.0  // objective penalty per unit of emissions excess
	DefaultMf      = 0.0  // one-time fine when the penalty flag is set
)

// RawParams is the untyped form of the parameters produced by every loader.
// Tables are indexed from 1. Demand maps product to day to value.
type RawParams struct {
	Scalars map[string]float64
	Product map[string]map[int]float64
	Pond    map[string]map[int]float64
	Demand  map[int]map[int]float64
}

// NewRawParams returns an empty RawParams ready to be filled.
func NewRawParams() RawParams {
	return RawParams{
		Scalars: make(map[string]float64),
		Product: make(map[string]map[int]float64),
		Pond:    make(map[string]map[int]float64),
		Demand:  make(map[int]map[int]float64),
	}
}

// Product holds the parameters of one product.
type Product struct {
	A    float64 // fresh water per unit produced
	W    float64 // emissions per unit produced
	G    float64 // sale price within demand
	U    float64 // sale price above demand
	Cp   float64 // production cost per unit
	Ca   float64 // holding cost per unit and day
	N    float64 // storage volume per unit
	Jmin float64 // minimum daily production
	Jmax float64 // maximum daily production
	IM0  float64 // initial inventory
}

// Pond holds the parameters of one tailings pond.
type Pond struct {
	Qmax float64 // maximum daily pumping
	Hmax float64 // storage capacity
	I0   float64 // initial water
	Cv   float64 // pumping cost per m3
	Cf   float64 // fixed cost of a pump activation
	F    float64 // fraction of process water routed to the pond
}

// Params is the validated parameter set of the model. Products, Ponds and
// Demand are indexed from 0; Demand[i][t] is the demand of product i+1 on
// day t+1.
type Params struct {
	T, M, K int

	Vmax    float64 // reservoir capacity
	L0      float64 // initial reservoir level
	P       float64 // external water cost per m3
	Pmax    float64 // daily budget
	N       float64 // storage volume cap
	Mbig    float64 // global big-M
	B       float64 // emissions threshold
	Penalty float64 // penalty per unit of emissions excess
	Pf      float64 // fixed cost of a day with external water
	Cw      float64 // bonus per m3 pumped back
	Mv      float64 // objective penalty per unit of emissions excess
	Mf      float64 // one-time fine

	Products []Product
	Ponds    []Pond
	Demand   [][]float64
}

//==============================================================================
// RAW PARAMETER READER
//==============================================================================

// rawReader reads typed values out of a RawParams and keeps the first error.
type rawReader struct {
	raw RawParams
	err error
}

// scalar returns the first of keys present, def when none is and def is not
// nil, and records a MissingParameterError otherwise.
func (r *rawReader) scalar(def *float64, keys ...string) float64 {
	if r.err != nil {
		return 0
	}
	for _, k := range keys {
		if v, ok := r.raw.Scalars[k]; ok {
			return v
		}
	}
	if def != nil {
		return *def
	}
	r.err = &MissingParameterError{Key: keys[0]}
	return 0
}

// table returns size values from the first of keys present in tables. A
// missing table gives def for every index when def is not nil; any other gap
// records a MissingParameterError.
func (r *rawReader) table(tables map[string]map[int]float64, size int, def *float64, keys ...string) []float64 {
	out := make([]float64, size)
	if r.err != nil {
		return out
	}

	var tbl map[int]float64
	key := keys[0]
	for _, k := range keys {
		if t, ok := tables[k]; ok {
			tbl, key = t, k
			break
		}
	}

	if len(tbl) == 0 && def != nil {
		for i := range out {
			out[i] = *def
		}
		return out
	}

	for i := range out {
		v, ok := tbl[i+1]
		if !ok {
			r.err = &MissingParameterError{Key: key, Index: []int{i + 1}}
			return out
		}
		out[i] = v
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// dimension reads T, M or K.
func dimension(raw RawParams, key string) (int, error) {
	v, ok := raw.Scalars[key]
	if !ok {
		return 0, &MissingParameterError{Key: key}
	}
	if math.IsNaN(v) || v < 1 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, &InvalidDimensionError{Key: key, Value: v}
	}
	return int(v), nil
}

// NewParams validates raw and returns the typed parameters. Required keys
// and the optional ones with their defaults are listed in the package
// documentation. Any missing required entry gives a MissingParameterError, a
// bad dimension an InvalidDimensionError, and a value out of its domain an
// InvalidParameterError.
// In case of failure, function returns an error.
func NewParams(raw RawParams) (*Params, error) {
	p := &Params{}
	var err error

	if p.T, err = dimension(raw, "T"); err != nil {
		return nil, err
	}
	if p.M, err = dimension(raw, "M"); err != nil {
		return nil, err
	}
	if p.K, err = dimension(raw, "K"); err != nil {
		return nil, err
	}

	r := &rawReader{raw: raw}

	p.Vmax = r.scalar(nil, "Vmax")
	p.L0 = r.scalar(nil, "L0")
	p.Mbig = r.scalar(nil, "Mbig")
	p.B = r.scalar(ptr(DefaultB), "B")
	p.Penalty = r.scalar(ptr(DefaultPenalty), "m", "mu")
	p.P = r.scalar(ptr(DefaultP), "P")
	p.Pmax = r.scalar(ptr(DefaultPmax), "Pmax")
	p.N = r.scalar(ptr(DefaultN), "N")
	p.Pf = r.scalar(ptr(DefaultPf), "Pf")
	p.Cw = r.scalar(ptr(DefaultCw), "cw")
	p.Mv = r.scalar(ptr(DefaultMv), "mv")
	p.Mf = r.scalar(ptr(DefaultMf), "mf")

	a := r.table(raw.Product, p.M, nil, "a")
	w := r.table(raw.Product, p.M, nil, "w")
	g := r.table(raw.Product, p.M, nil, "g")
	u := r.table(raw.Product, p.M, nil, "u")
	n := r.table(raw.Product, p.M, nil, "n")
	jmin := r.table(raw.Product, p.M, nil, "Jmin")
	jmax := r.table(raw.Product, p.M, nil, "Jmax")
	ca := r.table(raw.Product, p.M, nil, "Ca", "m")
	cp := r.table(raw.Product, p.M, nil, "Cp", "c")
	im0 := r.table(raw.Product, p.M, ptr(0), "IM0")

	hmax := r.table(raw.Pond, p.K, nil, "Hmax")
	qmax := r.table(raw.Pond, p.K, nil, "Qmax")
	f := r.table(raw.Pond, p.K, nil, "F")
	i0 := r.table(raw.Pond, p.K, nil, "I0")
	cv := r.table(raw.Pond, p.K, nil, "Cv", "C")
	cf := r.table(raw.Pond, p.K, nil, "Cf", "f")

	if r.err != nil {
		return nil, r.err
	}

	p.Products = make([]Product, p.M)
	for i := range p.Products {
		p.Products[i] = Product{
			A: a[i], W: w[i], G: g[i], U: u[i], Cp: cp[i], Ca: ca[i],
			N: n[i], Jmin: jmin[i], Jmax: jmax[i], IM0: im0[i],
		}
	}
	p.Ponds = make([]Pond, p.K)
	for k := range p.Ponds {
		p.Ponds[k] = Pond{Qmax: qmax[k], Hmax: hmax[k], I0: i0[k], Cv: cv[k], Cf: cf[k], F: f[k]}
	}

	if p.Demand, err = readDemand(raw.Demand, p); err != nil {
		return nil, err
	}

	if err = p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// readDemand returns the demand table. An empty table falls back to twice the
// maximum production of each product on every day, which never binds.
func readDemand(raw map[int]map[int]float64, p *Params) ([][]float64, error) {
	empty := true
	for _, days := range raw {
		if len(days) > 0 {
			empty = false
			break
		}
	}

	d := make([][]float64, p.M)
	for i := range d {
		d[i] = make([]float64, p.T)
		for t := range d[i] {
			if empty {
				d[i][t] = 2 * p.Products[i].Jmax
				continue
			}
			v, ok := raw[i+1][t+1]
			if !ok {
				return nil, &MissingParameterError{Key: "d", Index: []int{i + 1, t + 1}}
			}
			d[i][t] = v
		}
	}
	return d, nil
}

//==============================================================================
// VALIDATION
//==============================================================================

// Validate checks dimensions, table sizes and value domains. It applies the
// same checks as NewParams to a Params built in code.
// In case of failure, function returns an error.
func (p *Params) Validate() error {
	if p == nil {
		return errors.New("nil parameters")
	}
	for _, d := range []struct {
		key string
		val int
	}{{"T", p.T}, {"M", p.M}, {"K", p.K}} {
		if d.val < 1 {
			return &InvalidDimensionError{Key: d.key, Value: float64(d.val)}
		}
	}

	if len(p.Products) != p.M {
		return errors.Errorf("%d products given for M = %d", len(p.Products), p.M)
	}
	if len(p.Ponds) != p.K {
		return errors.Errorf("%d ponds given for K = %d", len(p.Ponds), p.K)
	}
	if len(p.Demand) != p.M {
		return errors.Errorf("demand given for %d products, M = %d", len(p.Demand), p.M)
	}
	for i := range p.Demand {
		if len(p.Demand[i]) != p.T {
			return errors.Errorf("demand of product %d covers %d days, T = %d", i+1, len(p.Demand[i]), p.T)
		}
	}

	nonNeg := []struct {
		key string
		val float64
	}{
		{"Vmax", p.Vmax}, {"L0", p.L0}, {"P", p.P}, {"Pmax", p.Pmax}, {"N", p.N},
		{"Mbig", p.Mbig}, {"B", p.B}, {"m", p.Penalty}, {"Pf", p.Pf}, {"cw", p.Cw},
		{"mv", p.Mv}, {"mf", p.Mf},
	}
	for _, s := range nonNeg {
		if err := checkNonNeg(s.key, nil, s.val); err != nil {
			return err
		}
	}

	for i, pr := range p.Products {
		idx := []int{i + 1}
		for _, v := range []struct {
			key string
			val float64
		}{
			{"a", pr.A}, {"w", pr.W}, {"g", pr.G}, {"u", pr.U}, {"Cp", pr.Cp},
			{"Ca", pr.Ca}, {"Jmin", pr.Jmin}, {"Jmax", pr.Jmax}, {"IM0", pr.IM0},
		} {
			if err := checkNonNeg(v.key, idx, v.val); err != nil {
				return err
			}
		}
		if !(pr.N > 0) || math.IsInf(pr.N, 0) {
			return &InvalidParameterError{Key: "n", Index: idx, Value: pr.N, Reason: "must be positive"}
		}
		if pr.Jmin > pr.Jmax {
			return &InvalidParameterError{Key: "Jmin", Index: idx, Value: pr.Jmin,
				Reason: "must not exceed Jmax"}
		}
	}

	for k, pd := range p.Ponds {
		idx := []int{k + 1}
		for _, v := range []struct {
			key string
			val float64
		}{
			{"Qmax", pd.Qmax}, {"Hmax", pd.Hmax}, {"I0", pd.I0}, {"Cv", pd.Cv},
			{"Cf", pd.Cf}, {"F", pd.F},
		} {
			if err := checkNonNeg(v.key, idx, v.val); err != nil {
				return err
			}
		}
	}

	for i := range p.Demand {
		for t, v := range p.Demand[i] {
			if err := checkNonNeg("d", []int{i + 1, t + 1}, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkNonNeg(key string, idx []int, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &InvalidParameterError{Key: key, Index: idx, Value: v, Reason: "must be finite"}
	case v < 0:
		return &InvalidParameterError{Key: key, Index: idx, Value: v, Reason: "must not be negative"}
	}
	return nil
}
