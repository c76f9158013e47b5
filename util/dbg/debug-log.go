//go:build debug
// +build debug

package dbg

import (
	"fmt"
	"log"
	"log/slog"
	"os"
)

type debugLoggerImpl struct {
	logger *log.Logger
	slog   *slog.Logger
}

// init function for the debug build.
// This will be called when the 'debug' tag is active.
func init() {
	// Initialize the global debugLog variable with the actual logging implementation.
	// We use log.New to create a logger that writes to stderr (or any io.Writer)
	// and includes file/line number for easy debugging, plus a slog logger for
	// structured key/value records.
	debugLog = &debugLoggerImpl{
		logger: log.New(os.Stderr, "", log.Lshortfile),
		slog:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

// Printf implements the Printf method of the DebugLogger interface.
func (d *debugLoggerImpl) Printf(format string, a ...interface{}) {
	d.logger.Output(3, fmt.Sprintf(format, a...)) // calldepth 3 to get caller's file/line
}

// Println implements the Println method of the DebugLogger interface.
func (d *debugLoggerImpl) Println(a ...interface{}) {
	d.logger.Output(3, fmt.Sprintln(a...)) // calldepth 3 to get caller's file/line
}

// Event logs a structured record through slog.
func (d *debugLoggerImpl) Event(msg string, kv ...any) {
	d.slog.Debug(msg, kv...)
}
