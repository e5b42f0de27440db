// Package logger provides a zap-based application logger that stamps every
// record with the service name and, when present, the active trace id.
package logger

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger writes.
type Level int8

// Supported levels.
const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a textual level such as "debug" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// TraceIDFn extracts a trace id from a context. An empty result means none.
type TraceIDFn func(ctx context.Context) string

// Logger writes structured records through zap.
type Logger struct {
	z         *zap.SugaredLogger
	traceIDFn TraceIDFn
}

// New builds a JSON logger writing to w.
func New(w io.Writer, minLevel Level, service string, traceIDFn TraceIDFn) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zapcore.Level(minLevel),
	)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).With(zap.String("service", service))
	return &Logger{z: z.Sugar(), traceIDFn: traceIDFn}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.DebugLevel, msg, args)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.InfoLevel, msg, args)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.WarnLevel, msg, args)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.ErrorLevel, msg, args)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) write(ctx context.Context, lvl zapcore.Level, msg string, args []any) {
	if l.traceIDFn != nil {
		if id := l.traceIDFn(ctx); id != "" {
			args = append(args, "trace_id", id)
		}
	}
	l.z.Logw(lvl, msg, args...)
}
