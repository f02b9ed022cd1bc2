// Package logging completes the zap-backed logger contract the teacher
// repo's pkg/utils/logger_test.go already commits to (GetGlobalLogger,
// a Logger wrapping *zap.Logger plus a derived sugared logger, With,
// component field helpers) but never implements.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig configures a Logger instance.
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json, text/console
	Output      string // file path; empty means stderr
	Development bool
}

// Logger wraps *zap.Logger with a cached sugared logger, matching the
// shape the teacher's test suite already exercises.
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildEncoder(cfg LogConfig) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if strings.EqualFold(cfg.Format, "json") {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

func buildSink(cfg LogConfig) zapcore.WriteSyncer {
	if cfg.Output == "" {
		return zapcore.AddSync(os.Stderr)
	}
	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.AddSync(f)
}

// InitLogger builds a standalone Logger from cfg. Never returns nil; an
// invalid output path falls back to stderr instead of panicking.
func InitLogger(cfg LogConfig) *Logger {
	core := zapcore.NewCore(buildEncoder(cfg), buildSink(cfg), parseLevel(cfg.Level))

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	zl := zap.New(core, opts...)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// With returns a child Logger with the given structured fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	zl := l.Logger.With(fields...)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// Sugar exposes the cached sugared logger for printf-style calls.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// WithComponent tags the logger with the subsystem emitting it (e.g.
// "hunter.monitor", "executor.worker").
func (l *Logger) WithComponent(name string) *Logger { return l.With(Component(name)) }

// WithMint tags the logger with a token mint address.
func (l *Logger) WithMint(mint string) *Logger { return l.With(Mint(mint)) }

// WithPositionID tags the logger with a position id.
func (l *Logger) WithPositionID(id string) *Logger { return l.With(PositionID(id)) }

// WithJobID tags the logger with a trade job id.
func (l *Logger) WithJobID(id int64) *Logger { return l.With(JobID(id)) }

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitGlobalLogger builds a Logger from cfg and installs it globally.
func InitGlobalLogger(cfg LogConfig) *Logger {
	l := InitLogger(cfg)
	SetGlobalLogger(l)
	return l
}

// SetGlobalLogger installs l as the process-wide logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// GetGlobalLogger returns the process-wide logger, lazily creating a
// default one (info level, console format) if none was installed yet.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{Level: "info"})
	}
	return globalLogger
}

// L is shorthand for GetGlobalLogger.
func L() *Logger { return GetGlobalLogger() }

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

func Debugf(template string, args ...interface{}) { L().sugar.Debugf(template, args...) }
func Infof(template string, args ...interface{})  { L().sugar.Infof(template, args...) }
func Warnf(template string, args ...interface{})  { L().sugar.Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { L().sugar.Errorf(template, args...) }

// Re-exported field constructors so call sites don't need a second
// "go.uber.org/zap" import alongside "pkg/logging".
var (
	String  = zap.String
	Int     = zap.Int
	Int64   = zap.Int64
	Float64 = zap.Float64
	Bool    = zap.Bool
	Err     = zap.Error
	Any     = zap.Any
)

// Domain field constructors, generalized from the teacher's
// Exchange/Symbol/PairID/OrderID/Spread/PNL set to RAPTOR's vocabulary.
func Mint(mint string) zap.Field             { return zap.String("mint", mint) }
func Source(source string) zap.Field         { return zap.String("source", source) }
func PositionID(id string) zap.Field         { return zap.String("position_id", id) }
func JobID(id int64) zap.Field               { return zap.Int64("job_id", id) }
func WorkerID(id string) zap.Field           { return zap.String("worker_id", id) }
func TxSignature(sig string) zap.Field       { return zap.String("tx_sig", sig) }
func Price(p float64) zap.Field              { return zap.Float64("price", p) }
func AmountSol(a float64) zap.Field          { return zap.Float64("amount_sol", a) }
func PNL(p float64) zap.Field                { return zap.Float64("pnl", p) }
func Trigger(t string) zap.Field             { return zap.String("trigger", t) }
func State(s string) zap.Field               { return zap.String("state", s) }
func LatencyMs(ms float64) zap.Field         { return zap.Float64("latency_ms", ms) }
func RequestID(id string) zap.Field          { return zap.String("request_id", id) }
func UserID(id int64) zap.Field              { return zap.Int64("user_id", id) }
func Component(name string) zap.Field        { return zap.String("component", name) }

// fieldsToInterface flattens zap.Fields into a key/value slice for
// sugared-logger call sites that accept ...interface{}.
func fieldsToInterface(fields []zap.Field) []interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	out := make([]interface{}, 0, len(enc.Fields)*2)
	for k, v := range enc.Fields {
		out = append(out, k, v)
	}
	return out
}
