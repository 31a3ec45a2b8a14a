// Package logger builds the shared logrus instance for the backtest and
// datasync commands.
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger for the given level and deployment environment.
// Production output is JSON for log aggregation; other environments get a
// colored text formatter.
func NewLogger(logLevel, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
