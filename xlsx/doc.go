// Package xlsx reads model parameters from a workbook and writes solutions to
// one.
//
// ReadParams turns the sheets Escalares, PorProducto, PorRelave and Demanda
// into a relaves.RawParams. WriteSolution lays the solution out by day with
// BuildGrid, below a summary block, and adds the daily cash flow when one is
// given.
package xlsx

import "log/slog"

var pkgLogger *slog.Logger

// SetLogger sets the logger used by the package. A nil logger restores the
// slog default.
func SetLogger(l *slog.Logger) {
	pkgLogger = l
}

func log() *slog.Logger {
	if pkgLogger != nil {
		return pkgLogger
	}
	return slog.Default()
}
