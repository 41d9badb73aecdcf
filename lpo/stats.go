package lpo

import "log/slog"

// Statistics summarizes the size and shape of a model.
type Statistics struct {
	Rows     int     // number of rows
	RowsL    int     // number of "less than or equal" rows
	RowsE    int     // number of equality rows
	RowsG    int     // number of "greater than or equal" rows
	Cols     int     // number of columns
	ColsInt  int     // number of integer columns
	ColsFree int     // number of columns without finite bounds
	Elems    int     // number of non-zero elements
	Density  float64 // Elems / (Rows * Cols)
}

// GetStatistics returns the statistics of the model.
func GetStatistics(m *Model) Statistics {
	var s Statistics

	s.Rows = len(m.Rows)
	s.Cols = len(m.Cols)
	s.Elems = len(m.Elems)

	for i := range m.Rows {
		switch m.Rows[i].Type {
		case RowL:
			s.RowsL++
		case RowE:
			s.RowsE++
		case RowG:
			s.RowsG++
		}
	}

	for i := range m.Cols {
		if m.Cols[i].Type == ColInt {
			s.ColsInt++
		}
		if m.Cols[i].BndLo <= -Plinfy && m.Cols[i].BndUp >= Plinfy {
			s.ColsFree++
		}
	}

	if s.Rows > 0 && s.Cols > 0 {
		s.Density = float64(s.Elems) / (float64(s.Rows) * float64(s.Cols))
	}

	return s
}

// LogValue implements slog.LogValuer.
func (s Statistics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rows", s.Rows),
		slog.Int("rowsL", s.RowsL),
		slog.Int("rowsE", s.RowsE),
		slog.Int("rowsG", s.RowsG),
		slog.Int("cols", s.Cols),
		slog.Int("colsInt", s.ColsInt),
		slog.Int("colsFree", s.ColsFree),
		slog.Int("elems", s.Elems),
		slog.Float64("density", s.Density),
	)
}
