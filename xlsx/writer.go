package xlsx

import (
	"math"

	"github.com/go-opt/relaves"
	"github.com/go-opt/relaves/lpo"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheets of the solution workbook.
const (
	SolutionSheet = "Solution"
	CashFlowSheet = "FlujoCaja"
)

// Summary is the block written above the solution grid. CashFlow is
// optional; when set, its breakdown is written to the FlujoCaja sheet.
type Summary struct {
	Objective float64
	Status    lpo.Status
	Gap       float64
	RunID     string
	Solver    string
	CashFlow  *relaves.CashFlowReport
}

// NewSummary returns the summary of soln for run runID.
func NewSummary(soln *lpo.Soln, runID string) Summary {
	return Summary{
		Objective: soln.ObjVal,
		Status:    soln.Status,
		Gap:       soln.Gap,
		RunID:     runID,
		Solver:    soln.Solver,
	}
}

// sheetWriter writes rows one after the other and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	bold  int
	err   error
}

func (w *sheetWriter) row(values ...interface{}) {
	w.next++
	if w.err != nil || len(values) == 0 {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	if err = w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		w.err = errors.Wrapf(err, "failed to write row %d of sheet %s", w.next, w.sheet)
	}
}

// header writes a row in bold.
func (w *sheetWriter) header(values ...string) {
	row := make([]interface{}, len(values))
	for n, v := range values {
		row[n] = v
	}
	w.row(row...)
	if w.err != nil || len(values) == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, w.next)
	last, _ := excelize.CoordinatesToCellName(len(values), w.next)
	if err := w.f.SetCellStyle(w.sheet, first, last, w.bold); err != nil {
		w.err = errors.Wrap(err, "failed to style header")
	}
}

// WriteSolution writes the summary block and the solution grid to sheet
// Solution of a new workbook, and the cash flow to sheet FlujoCaja when the
// summary carries one.
// In case of failure, function returns an error.
func WriteSolution(fileName string, m *lpo.Model, soln *lpo.Soln, sum Summary, opts GridOptions) error {
	grid, err := BuildGrid(m, soln, opts)
	if err != nil {
		return errors.Wrap(err, "WriteSolution failed")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err = f.SetSheetName(f.GetSheetName(0), SolutionSheet); err != nil {
		return errors.Wrap(err, "failed to name solution sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	w := &sheetWriter{f: f, sheet: SolutionSheet, bold: bold}
	w.row("Objective", cellOf(sum.Objective))
	w.row("Status", sum.Status.String())
	w.row("Gap", gapCell(sum.Gap))
	w.row("Run ID", sum.RunID)
	w.row("Solver", sum.Solver)
	for _, s := range grid.Scalars {
		w.row(s.Name, s.Value)
	}
	w.row()
	w.header(grid.Header...)
	for _, r := range grid.Rows {
		w.row(r...)
	}
	if w.err == nil {
		w.err = f.SetColWidth(SolutionSheet, "A", "A", 12)
	}
	if w.err != nil {
		return errors.Wrap(w.err, "failed to write solution sheet")
	}

	if sum.CashFlow != nil {
		if err = writeCashFlow(f, bold, sum.CashFlow); err != nil {
			return err
		}
	}

	if err = f.SaveAs(fileName); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", fileName)
	}
	log().Info("solution written", "file", fileName, "columns", len(grid.Header), "days", len(grid.Rows),
		"vertical", grid.Vertical)
	return nil
}

func gapCell(gap float64) interface{} {
	switch {
	case math.IsNaN(gap):
		return nil
	case math.IsInf(gap, 0):
		return "inf"
	}
	return gap
}

func writeCashFlow(f *excelize.File, bold int, rep *relaves.CashFlowReport) error {
	if _, err := f.NewSheet(CashFlowSheet); err != nil {
		return errors.Wrap(err, "failed to add cash-flow sheet")
	}

	money := func(d decimal.Decimal) interface{} { return d.InexactFloat64() }
	line := func(label interface{}, d relaves.DayCashFlow) []interface{} {
		return []interface{}{label, money(d.Sales), money(d.OverSales), money(d.Holding),
			money(d.Pumping), money(d.ExternalWater), money(d.Production), money(d.Penalty), money(d.Net)}
	}

	w := &sheetWriter{f: f, sheet: CashFlowSheet, bold: bold}
	w.header("Day", "Sales", "OverSales", "Holding", "Pumping", "ExternalWater", "Production", "Penalty", "Net")
	for _, d := range rep.Days {
		w.row(line(int64(d.Day), d)...)
	}
	w.row(line("Total", rep.Total)...)
	w.row()
	w.row("ReuseBonus", money(rep.ReuseBonus))
	w.row("ExcessPenalty", money(rep.ExcessPenalty))
	w.row("Fine", money(rep.Fine))
	w.row("Objective", money(rep.Objective))

	if w.err != nil {
		return errors.Wrap(w.err, "failed to write cash-flow sheet")
	}
	return nil
}
