package logger

import (
	"log/slog"
	"os"
)

// New returns the default text logger writing to stdout. Services take a
// *slog.Logger through options so tests can swap in a silent one.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
