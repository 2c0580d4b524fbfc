// Package xlog sets up a single op/go-logging backend on stderr with a
// timestamped, leveled format and hands out module-scoped loggers.
// internal/engine is its only user; the other packages still write with
// log or fmt.
package xlog

import (
	"os"

	"github.com/op/go-logging"
)

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:-7.7s} %{module}: %{message}`,
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(backendFormatter)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
}

// MustGetLogger returns a module-scoped logger, panicking if the module
// name is invalid. Mirrors logging.MustGetLogger so callers don't need to
// import op/go-logging directly.
func MustGetLogger(module string) *logging.Logger {
	return logging.MustGetLogger(module)
}

// SetLevel changes the verbosity of a previously created module logger.
func SetLevel(level logging.Level, module string) {
	logging.SetLevel(level, module)
}
