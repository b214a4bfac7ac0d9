package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/opsreport/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger mirrors the core no-op logger.
type NopLogger = corelogger.NopLogger

// Options configures the process wide log output.
type Options struct {
	// Level is a zerolog level name; LOG_LEVEL overrides it.
	Level string `json:"level"`
	// File tees JSON logs into a rotating file when set.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var (
	mu     sync.RWMutex
	output io.Writer
	level  = zerolog.InfoLevel
)

// Setup applies opts to every logger created afterwards. The returned closer
// releases the log file.
func Setup(opts Options) (io.Closer, error) {
	lvl := opts.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		lvl = env
	}
	parsed := zerolog.InfoLevel
	if lvl != "" {
		var err error
		parsed, err = zerolog.ParseLevel(strings.ToLower(lvl))
		if err != nil {
			return nil, err
		}
	}

	var closer io.Closer = io.NopCloser(nil)
	writers := []io.Writer{stdout()}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		writers = append(writers, lj)
		closer = lj
	}

	mu.Lock()
	level = parsed
	output = zerolog.MultiLevelWriter(writers...)
	mu.Unlock()
	return closer, nil
}

func stdout() io.Writer {
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02T15:04:05Z07:00"}
	}
	return os.Stdout
}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
