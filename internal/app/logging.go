package app

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/puzzle"
)

// NewLogger builds the server logger: colored text at debug level in
// development, JSON at info level otherwise. LOG_FILE adds a rotating JSON
// file. SOLVER_LOG turns on the puzzle package's debug output.
func NewLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if config.Development() {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if path := config.LogFile(); path != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   path,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      log.GetLevel(),
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return nil, fmt.Errorf("unable to open log file %s: %w", path, err)
		}
		log.AddHook(hook)
	}

	puzzle.Log.SetFormatter(log.Formatter)
	puzzle.Log.SetOutput(log.Out)
	if config.SolverLog() {
		puzzle.Log.SetLevel(logrus.DebugLevel)
	} else {
		puzzle.Log.SetLevel(logrus.InfoLevel)
	}

	return log, nil
}
