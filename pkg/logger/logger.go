package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the process-wide logger.
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // optional; empty means console only
	MaxSize    int    // MB per log file
	MaxBackups int    // rotated files kept
	MaxAge     int    // days rotated files kept
	Compress   bool
}

// Init configures the global logrus logger. With an OutputFile set, logs go
// to both console and a lumberjack-rotated file.
func Init(cfg Config) error {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if cfg.OutputFile == "" {
		logrus.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.OutputFile,
		MaxSize:    orDefault(cfg.MaxSize, 50),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAge, 14),
		Compress:   cfg.Compress,
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

// WithComponent returns a logger entry tagged for one subsystem.
func WithComponent(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
