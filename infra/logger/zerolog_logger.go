package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// Options are the process-wide logging defaults.
type Options struct {
	Level   string
	Console bool
	// File additionally writes JSON lines to a size-rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	defaultsMu sync.RWMutex
	defaults   Options
	fileOut    *lumberjack.Logger
)

// Configure sets the options used by loggers created afterwards. LOG_LEVEL
// and APP_ENV still take precedence.
func Configure(opts Options) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if fileOut != nil && (opts.File != defaults.File || opts.MaxSizeMB != defaults.MaxSizeMB ||
		opts.MaxBackups != defaults.MaxBackups || opts.MaxAgeDays != defaults.MaxAgeDays) {
		_ = fileOut.Close()
		fileOut = nil
	}
	if opts.File != "" && fileOut == nil {
		fileOut = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
	}
	defaults = opts
}

// NewZerologLogger writes to stdout. APP_ENV=dev switches to the console
// writer and LOG_LEVEL (debug, info, warn, error) sets the minimum level.
func NewZerologLogger(component string) Logger {
	defaultsMu.RLock()
	level, console, file := defaults.Level, defaults.Console, fileOut
	defaultsMu.RUnlock()
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		console = true
	}
	var out io.Writer = os.Stdout
	if console {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if file != nil {
		out = zerolog.MultiLevelWriter(out, file)
	}
	return NewWriterLogger(out, component, level)
}

// NewWriterLogger builds a logger on an arbitrary writer. An empty or
// unparsable level falls back to info.
func NewWriterLogger(w io.Writer, component, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
