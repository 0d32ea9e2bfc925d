package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func ConsoleLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// FileLogger writes JSON lines to a size-rotated file at path and mirrors
// them to stdout. The returned closer releases the file.
func FileLogger(level logrus.Level, path string) (io.Closer, *logrus.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create log directory")
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
	log := logrus.New()
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{})
	return rotator, log, nil
}

// ParseLevel maps a configured level name to logrus, defaulting to error.
func ParseLevel(name string) logrus.Level {
	switch name {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}
