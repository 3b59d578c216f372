// Package logger is the module-scoped structured logger used across lvacfs, built on
// log/slog.
//
// A CentralLogger is created from LoggingConfig at startup and installed with SetGlobal.
// Packages then take a scoped logger from it:
//
//	log := logger.Global().Module("lvacfs")
//	log.Info("module loaded", logger.String("path", libPath))
//
// Nested modules are joined with a dot, so Module("lvacfs").Module("session") logs as
// module "lvacfs.session". Each module can be given its own level in
// LoggingConfig.ModuleLevels.
//
// Console output is text without timestamps. File output is JSON rotated by lumberjack.
// Tests use NewSlogLogger with a buffer or io.Discard.
package logger

import "time"

// LogLevel is a severity name as used in configuration.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Field is one structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is implemented by module loggers. All methods are safe for concurrent use.
type Logger interface {
	// Module returns a child logger scoped to name.
	Module(name string) Logger
	// With returns a logger that adds fields to every record.
	With(fields ...Field) Logger

	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

const (
	errorKey    = "error"
	moduleKey   = "module"
	streamIDKey = "stream_id"
	codeKey     = "code"
)

func String(key, value string) Field                 { return Field{key, value} }
func Int(key string, value int) Field                { return Field{key, value} }
func Int64(key string, value int64) Field            { return Field{key, value} }
func Uint64(key string, value uint64) Field          { return Field{key, value} }
func Float64(key string, value float64) Field        { return Field{key, value} }
func Bool(key string, value bool) Field              { return Field{key, value} }
func Time(key string, value time.Time) Field         { return Field{key, value} }
func Any(key string, value any) Field                { return Field{key, value} }
func Duration(key string, value time.Duration) Field { return Field{key, value} }

// Error returns an "error" field holding err's message, or nil.
func Error(err error) Field {
	if err == nil {
		return Field{errorKey, nil}
	}
	return Field{errorKey, err.Error()}
}

// StreamID tags a record with the capture stream it belongs to.
func StreamID(id string) Field {
	return Field{streamIDKey, id}
}

// Code records a native module return code.
func Code(code int32) Field {
	return Field{codeKey, int64(code)}
}
