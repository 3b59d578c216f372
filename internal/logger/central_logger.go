package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalMu     sync.Mutex
	globalLogger *CentralLogger
	fallback     = sync.OnceValue(func() *CentralLogger {
		return &CentralLogger{
			handler:      consoleHandler(os.Stdout, slog.LevelInfo),
			defaultLevel: slog.LevelInfo,
		}
	})
)

// SetGlobal installs cl as the logger returned by Global. Passing nil restores the
// console fallback.
func SetGlobal(cl *CentralLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = cl
}

// Global returns the installed CentralLogger, or an info-level console logger when none
// has been installed yet.
func Global() *CentralLogger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		return globalLogger
	}
	return fallback()
}

// CentralLogger routes module loggers to the console and an optional rotated JSON file.
type CentralLogger struct {
	handler      slog.Handler
	defaultLevel slog.Level
	moduleLevels map[string]slog.Level

	mu   sync.Mutex
	file *lumberjack.Logger
}

// NewCentralLogger builds a logger from cfg. Nil sections of cfg are filled with
// defaults.
func NewCentralLogger(cfg *LoggingConfig) (*CentralLogger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging config cannot be nil")
	}
	applyConfigDefaults(cfg)

	tz := time.Local
	if cfg.Timezone != "" && cfg.Timezone != "Local" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %s: %w", cfg.Timezone, err)
		}
		tz = loc
	}

	cl := &CentralLogger{
		defaultLevel: parseLogLevel(cfg.DefaultLevel),
		moduleLevels: make(map[string]slog.Level, len(cfg.ModuleLevels)),
	}
	for module, level := range cfg.ModuleLevels {
		cl.moduleLevels[module] = parseLogLevel(level)
	}

	var handlers fanout
	if cfg.Console.Enabled {
		handlers = append(handlers, consoleHandler(os.Stdout, parseLogLevel(cfg.Console.Level)))
	}
	if fo := cfg.FileOutput; fo.Enabled {
		if err := os.MkdirAll(filepath.Dir(fo.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		// lumberjack opens the file on first write
		cl.file = &lumberjack.Logger{
			Filename:   fo.Path,
			MaxSize:    fo.MaxSize,
			MaxAge:     fo.MaxAge,
			MaxBackups: fo.MaxRotatedFiles,
			Compress:   fo.Compress,
			LocalTime:  tz == time.Local,
		}
		handlers = append(handlers, fileHandler(cl.file, parseLogLevel(fo.Level), tz))
	}

	switch len(handlers) {
	case 0:
		cl.handler = slog.DiscardHandler
	case 1:
		cl.handler = handlers[0]
	default:
		cl.handler = handlers
	}
	return cl, nil
}

// Module returns a logger for the named module at its configured level.
func (cl *CentralLogger) Module(name string) Logger {
	level := cl.defaultLevel
	if l, ok := cl.moduleLevels[name]; ok {
		level = l
	}
	return &moduleLogger{
		module: name,
		slog:   slog.New(cl.handler),
		level:  level,
	}
}

// Rotate starts a new log file. It does nothing without file output.
func (cl *CentralLogger) Rotate() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.file == nil {
		return nil
	}
	return cl.file.Rotate()
}

// Close closes the log file, if any.
func (cl *CentralLogger) Close() error {
	if cl == nil {
		return nil
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.file == nil {
		return nil
	}
	err := cl.file.Close()
	cl.file = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// NewSlogLogger returns a Logger writing JSON records to w, outside module routing.
func NewSlogLogger(w io.Writer, level LogLevel, tz *time.Location) Logger {
	if tz == nil {
		tz = time.UTC
	}
	lvl := parseLogLevel(string(level))
	return &moduleLogger{
		slog:  slog.New(fileHandler(w, lvl, tz)),
		level: lvl,
	}
}

// moduleLogger is the Logger handed out by CentralLogger.
type moduleLogger struct {
	module string
	slog   *slog.Logger
	level  slog.Level
	fields []Field
}

func (m *moduleLogger) Module(name string) Logger {
	child := *m
	child.module = name
	if m.module != "" {
		child.module = m.module + "." + name
	}
	child.fields = slices.Clone(m.fields)
	return &child
}

func (m *moduleLogger) With(fields ...Field) Logger {
	child := *m
	child.fields = slices.Concat(m.fields, fields)
	return &child
}

func (m *moduleLogger) Trace(msg string, fields ...Field) { m.log(levelTrace, msg, fields) }
func (m *moduleLogger) Debug(msg string, fields ...Field) { m.log(slog.LevelDebug, msg, fields) }
func (m *moduleLogger) Info(msg string, fields ...Field)  { m.log(slog.LevelInfo, msg, fields) }
func (m *moduleLogger) Warn(msg string, fields ...Field)  { m.log(slog.LevelWarn, msg, fields) }

// Error records are written regardless of the module level.
func (m *moduleLogger) Error(msg string, fields ...Field) {
	m.write(slog.LevelError, msg, fields)
}

func (m *moduleLogger) log(level slog.Level, msg string, fields []Field) {
	if level < m.level {
		return
	}
	m.write(level, msg, fields)
}

func (m *moduleLogger) write(level slog.Level, msg string, fields []Field) {
	attrs := make([]slog.Attr, 0, 1+len(m.fields)+len(fields))
	if m.module != "" {
		attrs = append(attrs, slog.String(moduleKey, m.module))
	}
	for _, f := range m.fields {
		attrs = append(attrs, fieldAttr(f))
	}
	for _, f := range fields {
		attrs = append(attrs, fieldAttr(f))
	}
	m.slog.LogAttrs(context.Background(), level, msg, attrs...)
}
