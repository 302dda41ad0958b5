package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logger  = newDiscardLogger()
	logFile *os.File
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Logger returns the process-wide logger
func Logger() *logrus.Logger {
	return logger
}

// Log prints debug messages to the log file if verbose mode is enabled
func Log(text string, args ...interface{}) {
	logger.Debugf(text, args...)
}

// InitLogger points the logger at path. The terminal belongs to the UI, so nothing is written
// to stdout; verbose mode adds debug messages.
func InitLogger(path string, verbose bool) error {
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = homeDir + path[1:]
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	CloseLogger()
	logFile = f
	logger.SetOutput(f)

	Log("Verbose logging enabled")
	return nil
}

// CloseLogger closes the log file if it's open
func CloseLogger() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
		logger.SetOutput(io.Discard)
	}
}
