package logger

import (
	"github.com/sirupsen/logrus"
	"io"
	"os"
)

// New returns a JSON logger writing to path. When the file cannot be opened
// it writes to fallback instead.
func New(path, level string, fallback io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if path == "" {
		log.SetOutput(fallback)
		return log
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.SetOutput(fallback)
		log.Warnf("Failed to open log file (%s), using fallback output: %v", path, err)
		return log
	}
	log.SetOutput(logFile)
	log.Info("Logger initialized")
	return log
}
