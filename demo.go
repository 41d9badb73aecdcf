package relaves

// Built-in parameter sets. Each call returns a fresh value that the caller
// may modify.

// DemoParams returns an artificial parameter set with 20 days, 3 products
// and 2 ponds. Demand is twice the maximum production, so it never binds,
// and the budget is high enough never to bind either.
func DemoParams() RawParams {
	const T = 20
	raw := NewRawParams()

	for k, v := range map[string]float64{
		"T": T, "M": 3, "K": 2,
		"Vmax": 1e7, "L0": 0, "P": 0.25, "Pmax": 1e12,
		"N": 1e9, "Mbig": 1e6, "B": 0, "mu": 0,
	} {
		raw.Scalars[k] = v
	}

	raw.Product["a"] = map[int]float64{1: 1.2, 2: 0.8, 3: 1.6}
	raw.Product["w"] = map[int]float64{1: 0.020, 2: 0.030, 3: 0.015}
	raw.Product["g"] = map[int]float64{1: 100, 2: 90, 3: 110}
	raw.Product["u"] = map[int]float64{1: 85, 2: 78, 3: 95}
	raw.Product["c"] = map[int]float64{1: 20, 2: 16, 3: 22}
	raw.Product["m"] = map[int]float64{1: 0.20, 2: 0.20, 3: 0.20}
	raw.Product["n"] = map[int]float64{1: 1, 2: 1, 3: 1}
	raw.Product["Jmin"] = map[int]float64{1: 40, 2: 35, 3: 45}
	raw.Product["Jmax"] = map[int]float64{1: 100, 2: 90, 3: 110}
	raw.Product["IM0"] = map[int]float64{1: 0, 2: 0, 3: 0}

	raw.Pond["F"] = map[int]float64{1: 0.20, 2: 0.25}
	raw.Pond["Qmax"] = map[int]float64{1: 1e6, 2: 1e6}
	raw.Pond["Hmax"] = map[int]float64{1: 1e7, 2: 1e7}
	raw.Pond["I0"] = map[int]float64{1: 0, 2: 0}
	raw.Pond["C"] = map[int]float64{1: 0.10, 2: 0.12}
	raw.Pond["f"] = map[int]float64{1: 0, 2: 0}

	for i, jmax := range raw.Product["Jmax"] {
		raw.Demand[i] = make(map[int]float64, T)
		for t := 1; t <= T; t++ {
			raw.Demand[i][t] = 2 * jmax
		}
	}

	return raw
}

// RealParams returns the parameter set of the reference operation: one year,
// copper and iron, two ponds.
func RealParams() RawParams {
	const T = 365
	raw := NewRawParams()

	for k, v := range map[string]float64{
		"T": T, "M": 2, "K": 2,
		"Vmax": 6000000, "L0": 4290000, "P": 5.45, "Pmax": 1e7,
		"N": 1e6, "Mbig": 1e6, "B": 110 * 365, "m": 0,
	} {
		raw.Scalars[k] = v
	}

	raw.Product["a"] = map[int]float64{1: 116.9, 2: 28.6}
	raw.Product["w"] = map[int]float64{1: 0.0756, 2: 0.0017}
	raw.Product["g"] = map[int]float64{1: 11002, 2: 105.56}
	raw.Product["u"] = map[int]float64{1: 11002, 2: 105.56}
	raw.Product["Cp"] = map[int]float64{1: 4585.6, 2: 50.9}
	raw.Product["Ca"] = map[int]float64{1: 0.001392, 2: 0.03104}
	raw.Product["n"] = map[int]float64{1: 0.348, 2: 0.776}
	raw.Product["Jmin"] = map[int]float64{1: 784.9, 2: 3534.34}
	raw.Product["Jmax"] = map[int]float64{1: 1569.8, 2: 7068.68}
	raw.Product["IM0"] = map[int]float64{1: 0, 2: 0}

	raw.Pond["F"] = map[int]float64{1: 0.3, 2: 0.4}
	raw.Pond["Qmax"] = map[int]float64{1: 136272, 2: 136272}
	raw.Pond["Hmax"] = map[int]float64{1: 1643000000, 2: 790000}
	raw.Pond["I0"] = map[int]float64{1: 1363690000, 2: 655700}
	raw.Pond["Cv"] = map[int]float64{1: 32.7, 2: 10.9}
	raw.Pond["Cf"] = map[int]float64{1: 69.9, 2: 75.3}

	daily := map[int]float64{1: 1412.82, 2: 6361.81}
	for i, d := range daily {
		raw.Demand[i] = make(map[int]float64, T)
		for t := 1; t <= T; t++ {
			raw.Demand[i][t] = d
		}
	}

	return raw
}
