package relaves

import "log/slog"

// pkgLogger is used by the package when set through SetLogger.
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
