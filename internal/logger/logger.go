// Package logger configures the structured logger shared by all components.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// ServiceName is attached to every log line.
const ServiceName = "queens_backend"

// New returns a logger writing to stdout with the given level and format ("json" or "text").
// Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, format)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(out io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// Component returns an entry tagged with the service and component names.
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"service":   ServiceName,
		"component": name,
	})
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
