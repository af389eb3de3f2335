package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger returns the driver logger. Request logs go to stderr so they
// never mix with a report written to stdout.
func newLogger(verbosity int, noColor bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    noColor,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05.000",
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})
	log.SetLevel(logLevel(verbosity))
	return log
}

func logLevel(verbosity int) logrus.Level {
	switch {
	case verbosity >= 2:
		return logrus.DebugLevel
	case verbosity == 1:
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}
