// Package logger provides the printf-style logger used across codetrail.
// Output is JSON via zap. Console output goes to stderr so command output on
// stdout stays machine-readable, and a rotating file is added when a log
// directory is configured.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Logger is the logging surface handed to every component.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
	Sync() error
}

type logger struct {
	log   *zap.Logger
	sugar *zap.SugaredLogger
}

// ParseLevel maps a level name to a zap level. Unknown names fall back to info.
func ParseLevel(level string) zapcore.Level {
	if l, ok := logLevelMap[strings.ToLower(level)]; ok {
		return l
	}
	return zapcore.InfoLevel
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewLogger creates a logger at the given level. When logsDir is non-empty
// the directory is created if needed and a dated, rotating log file is
// written alongside stderr.
func NewLogger(logsDir, level string) (Logger, error) {
	logLevel := ParseLevel(level)
	enc := zapcore.NewJSONEncoder(encoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), logLevel),
	}

	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := filepath.Join(logsDir, fmt.Sprintf("codetrail-%s.log", time.Now().Format("20060102")))
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   name,
			MaxSize:    100, // megabytes
			MaxBackups: 0,
			MaxAge:     5, // days
			Compress:   true,
			LocalTime:  true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), fileWriter, logLevel))
	}

	return NewWithCore(zapcore.NewTee(cores...)), nil
}

// NewWithCore wraps an existing zap core. Tests pass an observer core here.
func NewWithCore(core zapcore.Core) Logger {
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &logger{log: zl, sugar: zl.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return NewWithCore(zapcore.NewNopCore())
}

func (l *logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *logger) Fatal(format string, args ...any) {
	l.sugar.Fatalf(format, args...)
}

func (l *logger) Sync() error {
	return l.log.Sync()
}
