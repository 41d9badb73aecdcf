package xlsx

import (
	"strconv"
	"strings"

	"github.com/go-opt/relaves"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Sheets of the parameter workbook.
const (
	ScalarSheet  = "Escalares"
	ProductSheet = "PorProducto"
	PondSheet    = "PorRelave"
	DemandSheet  = "Demanda"
)

// ReadParams reads a parameter workbook. Escalares holds one key and value
// per row. PorProducto and PorRelave hold a header row and one row per
// product or pond, in index order; a column is read when the leading token of
// its header, e.g. "a" in "a (m3 agua/ton)", names a table of that kind.
// Demanda is optional and holds the columns Dia and Prod1..ProdM.
// In case of failure, function returns an error.
func ReadParams(fileName string) (relaves.RawParams, error) {
	f, err := excelize.OpenFile(fileName)
	if err != nil {
		return relaves.RawParams{}, errors.Wrapf(err, "failed to open workbook %s", fileName)
	}
	defer f.Close()

	raw, err := readParams(f)
	if err != nil {
		return relaves.RawParams{}, errors.Wrapf(err, "failed to read workbook %s", fileName)
	}
	log().Debug("read parameter workbook", "file", fileName, "scalars", len(raw.Scalars),
		"productTables", len(raw.Product), "pondTables", len(raw.Pond), "demandProducts", len(raw.Demand))
	return raw, nil
}

func readParams(f *excelize.File) (relaves.RawParams, error) {
	raw := relaves.NewRawParams()

	sheets := make(map[string]bool)
	for _, s := range f.GetSheetList() {
		sheets[s] = true
	}
	for _, s := range []string{ScalarSheet, ProductSheet, PondSheet} {
		if !sheets[s] {
			return raw, errors.Errorf("missing sheet %s", s)
		}
	}

	rows, err := f.GetRows(ScalarSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return raw, errors.Wrapf(err, "failed to read sheet %s", ScalarSheet)
	}
	if err = readScalars(rows, raw.Scalars); err != nil {
		return raw, err
	}

	rows, err = f.GetRows(ProductSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return raw, errors.Wrapf(err, "failed to read sheet %s", ProductSheet)
	}
	if err = readTables(ProductSheet, rows, relaves.IsProductKey, raw.Product); err != nil {
		return raw, err
	}

	rows, err = f.GetRows(PondSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return raw, errors.Wrapf(err, "failed to read sheet %s", PondSheet)
	}
	if err = readTables(PondSheet, rows, relaves.IsPondKey, raw.Pond); err != nil {
		return raw, err
	}

	if sheets[DemandSheet] {
		rows, err = f.GetRows(DemandSheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return raw, errors.Wrapf(err, "failed to read sheet %s", DemandSheet)
		}
		if err = readDemand(rows, raw.Demand); err != nil {
			return raw, err
		}
	}

	return raw, nil
}

// symbol returns the leading token of a header or key cell.
func symbol(cell string) string {
	cell = strings.TrimSpace(cell)
	if i := strings.IndexAny(cell, "( \t"); i >= 0 {
		cell = cell[:i]
	}
	return cell
}

func cellValue(sheet string, col, row int, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		name, _ := excelize.CoordinatesToCellName(col+1, row+1)
		return 0, errors.Errorf("%s!%s: %q is not a number", sheet, name, s)
	}
	return v, nil
}

// readScalars reads key and value pairs. A first row whose value is not a
// number is a header.
func readScalars(rows [][]string, out map[string]float64) error {
	for r, row := range rows {
		if len(row) == 0 || symbol(row[0]) == "" {
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			return errors.Errorf("%s: key %s on row %d has no value", ScalarSheet, symbol(row[0]), r+1)
		}
		v, err := cellValue(ScalarSheet, 1, r, row[1])
		if err != nil {
			if r == 0 {
				continue
			}
			return err
		}
		out[symbol(row[0])] = v
	}
	return nil
}

// readTables reads one table per recognized header column. Data row n holds
// index n. Blank cells are left out and reported later as missing.
func readTables(sheet string, rows [][]string, known func(string) bool, out map[string]map[int]float64) error {
	if len(rows) == 0 {
		return errors.Errorf("%s: sheet is empty", sheet)
	}

	cols := make(map[int]string)
	for c, h := range rows[0] {
		key := symbol(h)
		if !known(key) {
			continue
		}
		if _, ok := out[key]; ok {
			return errors.Errorf("%s: duplicate column %s", sheet, key)
		}
		cols[c] = key
		out[key] = make(map[int]float64)
	}
	if len(cols) == 0 {
		return errors.Errorf("%s: no parameter columns in header", sheet)
	}

	idx := 0
	for r := 1; r < len(rows); r++ {
		if blankRow(rows[r]) {
			continue
		}
		idx++
		for c, key := range cols {
			if c >= len(rows[r]) || strings.TrimSpace(rows[r][c]) == "" {
				continue
			}
			v, err := cellValue(sheet, c, r, rows[r][c])
			if err != nil {
				return err
			}
			out[key][idx] = v
		}
	}
	return nil
}

// readDemand reads the Dia column and the Prod<i> columns.
func readDemand(rows [][]string, out map[int]map[int]float64) error {
	if len(rows) == 0 {
		return nil
	}

	dayCol := -1
	prodCols := make(map[int]int)
	for c, h := range rows[0] {
		h = strings.TrimSpace(h)
		switch {
		case strings.EqualFold(h, "Dia") || strings.EqualFold(h, "Día"):
			dayCol = c
		case len(h) > 4 && strings.EqualFold(h[:4], "Prod"):
			i, err := strconv.Atoi(h[4:])
			if err != nil || i < 1 {
				return errors.Errorf("%s: unexpected column %s", DemandSheet, h)
			}
			prodCols[c] = i
		}
	}
	if dayCol < 0 {
		return errors.Errorf("%s: missing column Dia", DemandSheet)
	}

	for r := 1; r < len(rows); r++ {
		if blankRow(rows[r]) {
			continue
		}
		if dayCol >= len(rows[r]) {
			return errors.Errorf("%s: row %d has no day", DemandSheet, r+1)
		}
		dv, err := cellValue(DemandSheet, dayCol, r, rows[r][dayCol])
		if err != nil {
			return err
		}
		day := int(dv)
		if float64(day) != dv || day < 1 {
			return errors.Errorf("%s: row %d has day %g, want a positive integer", DemandSheet, r+1, dv)
		}

		for c, i := range prodCols {
			if c >= len(rows[r]) || strings.TrimSpace(rows[r][c]) == "" {
				continue
			}
			v, err := cellValue(DemandSheet, c, r, rows[r][c])
			if err != nil {
				return err
			}
			if out[i] == nil {
				out[i] = make(map[int]float64)
			}
			out[i][day] = v
		}
	}
	return nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
