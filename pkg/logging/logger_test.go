package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger_Defaults(t *testing.T) {
	logger := InitLogger(LogConfig{})
	if logger == nil || logger.Logger == nil || logger.sugar == nil {
		t.Fatal("InitLogger returned an incomplete logger")
	}
}

func TestInitLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "fatal", "invalid"} {
		t.Run(level, func(t *testing.T) {
			if InitLogger(LogConfig{Level: level}) == nil {
				t.Fatalf("InitLogger returned nil for level %s", level)
			}
		})
	}
}

func TestInitLogger_InvalidFileOutput(t *testing.T) {
	logger := InitLogger(LogConfig{Output: "/nonexistent/directory/log.txt"})
	if logger == nil {
		t.Fatal("InitLogger should fall back to stderr, not return nil")
	}
}

func TestGlobalLogger(t *testing.T) {
	globalMu.Lock()
	globalLogger = nil
	globalMu.Unlock()

	l1 := GetGlobalLogger()
	l2 := GetGlobalLogger()
	if l1 != l2 {
		t.Error("GetGlobalLogger returned different instances on repeat calls")
	}
	if L() != l1 {
		t.Error("L() did not return the global logger")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	logger := InitLogger(LogConfig{Level: "warn"})
	SetGlobalLogger(logger)
	if GetGlobalLogger() != logger {
		t.Error("SetGlobalLogger did not take effect")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel, "DEBUG": zapcore.DebugLevel,
		"info": zapcore.InfoLevel, "": zapcore.InfoLevel, "bogus": zapcore.InfoLevel,
		"warn": zapcore.WarnLevel, "warning": zapcore.WarnLevel,
		"error": zapcore.ErrorLevel, "fatal": zapcore.FatalLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_With(t *testing.T) {
	logger := InitLogger(LogConfig{Level: "info"})
	child := logger.With(zap.String("key", "value"))
	if child == nil || child == logger {
		t.Error("With should return a distinct child logger")
	}
}

func TestLogger_DomainHelpers(t *testing.T) {
	logger := InitLogger(LogConfig{Level: "info"})
	helpers := map[string]func() *Logger{
		"WithComponent":  func() *Logger { return logger.WithComponent("hunter.monitor") },
		"WithMint":       func() *Logger { return logger.WithMint("7GCi...W2hr") },
		"WithPositionID": func() *Logger { return logger.WithPositionID("pos-1") },
		"WithJobID":      func() *Logger { return logger.WithJobID(42) },
	}
	for name, fn := range helpers {
		t.Run(name, func(t *testing.T) {
			if got := fn(); got == nil || got == logger {
				t.Errorf("%s should return a distinct logger", name)
			}
		})
	}
}

func TestGlobalLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "message", LevelKey: "level"}),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	testLogger := &Logger{Logger: zap.New(core), sugar: zap.New(core).Sugar()}
	SetGlobalLogger(testLogger)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	testLogger.Sync()

	out := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestFieldsToInterface(t *testing.T) {
	fields := []zap.Field{zap.String("key1", "value1"), zap.Int("key2", 42)}
	result := fieldsToInterface(fields)
	if len(result) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(result))
	}
}
