package qiskitruntime

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Environment variables controlling the package logger.
const (
	// EnvLogLevel selects the logging level (trace, debug, info, warn, error).
	EnvLogLevel = "QISKIT_IBM_RUNTIME_LOG_LEVEL"
	// EnvLogFile redirects log output from stdout to the named file.
	EnvLogFile = "QISKIT_IBM_RUNTIME_LOG_FILE"
)

var logger = newLogger()

func newLogger() *log.Logger {
	v := viper.New()
	v.AutomaticEnv()

	l := log.New()
	l.SetOutput(os.Stdout)

	if lvl := v.GetString(EnvLogLevel); lvl != "" {
		parsed, err := log.ParseLevel(lvl)
		if err != nil {
			l.Warnf("unrecognized log level %q, keeping %s", lvl, l.GetLevel())
		} else {
			l.SetLevel(parsed)
		}
	}

	if file := v.GetString(EnvLogFile); file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			l.Warnf("cannot open log file %s: %v, logging to stdout", file, err)
		} else {
			l.SetOutput(f)
		}
	}

	return l
}

// Logger exposes the package logger so callers can attach hooks or change
// the level at runtime.
func Logger() *log.Logger { return logger }
