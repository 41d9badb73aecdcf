package xlsx

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-opt/relaves/lpo"
	"github.com/pkg/errors"
)

// DefaultZeroTol is the magnitude below which values are omitted from the grid.
const DefaultZeroTol = 1e-12

// intTol is the distance to an integer below which a value is written as one.
const intTol = 1e-9

// GridOptions controls which values the grid holds.
type GridOptions struct {
	IncludeZeros bool    // keep values whose magnitude is below ZeroTol
	ZeroTol      float64 // DefaultZeroTol when zero
}

// Scalar is a variable without index.
type Scalar struct {
	Name  string
	Value interface{}
}

// Grid is the solution laid out by day. Header starts with "Day" and names
// one column per base name and index prefix, e.g. G_2 for G[2,t] and L for
// L[t]. Rows[t-1] starts with day t; blank cells are nil. Values are int64
// when within 1e-9 of an integer and float64 otherwise.
//
// Without day-indexed values the grid is vertical: Header starts with
// "Variable" and names every base, and the single row holds the first value
// of each.
type Grid struct {
	Header   []string
	Rows     [][]interface{}
	Scalars  []Scalar
	Vertical bool
}

type gridColumn struct {
	base   string
	prefix []int
	values map[int]float64 // by day
}

// BuildGrid lays out the values of soln by day.
// In case of failure, function returns an error.
func BuildGrid(m *lpo.Model, soln *lpo.Soln, opts GridOptions) (*Grid, error) {
	if soln == nil || soln.Values == nil {
		return nil, errors.New("BuildGrid needs a solution with values")
	}
	if len(soln.Values) != len(m.Cols) {
		return nil, errors.Errorf("solution has %d values, model has %d columns", len(soln.Values), len(m.Cols))
	}
	zeroTol := opts.ZeroTol
	if zeroTol <= 0 {
		zeroTol = DefaultZeroTol
	}

	g := &Grid{}
	var bases []string
	byBase := make(map[string]map[string]*gridColumn)
	firstValue := make(map[string]float64)
	maxDay := 0

	for j, c := range m.Cols {
		v := soln.Values[j]
		if !opts.IncludeZeros && math.Abs(v) < zeroTol {
			continue
		}
		if _, ok := firstValue[c.Base]; !ok {
			firstValue[c.Base] = v
		}

		if len(c.Index) == 0 {
			g.Scalars = append(g.Scalars, Scalar{Name: c.Name, Value: cellOf(v)})
			continue
		}

		cols, ok := byBase[c.Base]
		if !ok {
			cols = make(map[string]*gridColumn)
			byBase[c.Base] = cols
			bases = append(bases, c.Base)
		}
		prefix := c.Index[:len(c.Index)-1]
		day := c.Index[len(c.Index)-1]
		key := prefixKey(prefix)
		col, ok := cols[key]
		if !ok {
			col = &gridColumn{base: c.Base, prefix: prefix, values: make(map[int]float64)}
			cols[key] = col
		}
		col.values[day] = v
		if day > maxDay {
			maxDay = day
		}
	}

	if maxDay == 0 {
		return verticalGrid(g, firstValue), nil
	}

	var columns []*gridColumn
	for _, base := range bases {
		cols := make([]*gridColumn, 0, len(byBase[base]))
		for _, col := range byBase[base] {
			cols = append(cols, col)
		}
		sort.Slice(cols, func(a, b int) bool { return lessIndex(cols[a].prefix, cols[b].prefix) })
		columns = append(columns, cols...)
	}

	g.Header = make([]string, 1, len(columns)+1)
	g.Header[0] = "Day"
	for _, col := range columns {
		g.Header = append(g.Header, columnHeader(col.base, col.prefix))
	}

	g.Rows = make([][]interface{}, maxDay)
	for day := 1; day <= maxDay; day++ {
		row := make([]interface{}, len(columns)+1)
		row[0] = int64(day)
		for n, col := range columns {
			if v, ok := col.values[day]; ok {
				row[n+1] = cellOf(v)
			}
		}
		g.Rows[day-1] = row
	}

	return g, nil
}

func verticalGrid(g *Grid, firstValue map[string]float64) *Grid {
	bases := make([]string, 0, len(firstValue))
	for b := range firstValue {
		bases = append(bases, b)
	}
	sort.Strings(bases)

	g.Vertical = true
	g.Header = append([]string{"Variable"}, bases...)
	row := make([]interface{}, len(bases)+1)
	row[0] = "Value"
	for n, b := range bases {
		row[n+1] = cellOf(firstValue[b])
	}
	g.Rows = [][]interface{}{row}
	return g
}

// cellOf returns v as an int64 when it is within intTol of an integer.
func cellOf(v float64) interface{} {
	r := math.Round(v)
	if math.Abs(v-r) < intTol && math.Abs(r) < 1<<53 {
		return int64(r)
	}
	return v
}

func columnHeader(base string, prefix []int) string {
	if len(prefix) == 0 {
		return base
	}
	parts := make([]string, len(prefix))
	for n, v := range prefix {
		parts[n] = strconv.Itoa(v)
	}
	return base + "_" + strings.Join(parts, "_")
}

func prefixKey(prefix []int) string {
	return columnHeader("", prefix)
}

func lessIndex(a, b []int) bool {
	for n := 0; n < len(a) && n < len(b); n++ {
		if a[n] != b[n] {
			return a[n] < b[n]
		}
	}
	return len(a) < len(b)
}
