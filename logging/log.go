package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zap logger. Every named child owns its level so a package
// can be made more or less verbose without touching the others.
type Logger struct {
	*zap.Logger
	level   zap.AtomicLevel
	encoder zapcore.Encoder
	out     zapcore.WriteSyncer
	closer  io.Closer
	name    string
	fields  []zap.Field
}

func newLogger(encoder zapcore.Encoder, out zapcore.WriteSyncer, level Level) *Logger {
	atom := zap.NewAtomicLevelAt(level.ZapLevel())
	return &Logger{
		Logger:  zap.New(zapcore.NewCore(encoder, out, atom), zap.AddCaller()),
		level:   atom,
		encoder: encoder,
		out:     out,
	}
}

// Clone returns a copy of the logger with its own level.
func (log *Logger) Clone() *Logger {
	atom := zap.NewAtomicLevelAt(log.level.Level())
	zl := zap.New(zapcore.NewCore(log.encoder.Clone(), log.out, atom), zap.AddCaller())
	if log.name != "" {
		zl = zl.Named(log.name)
	}
	fields := append([]zap.Field{}, log.fields...)
	if len(fields) > 0 {
		zl = zl.With(fields...)
	}
	return &Logger{
		Logger:  zl,
		level:   atom,
		encoder: log.encoder,
		out:     log.out,
		closer:  log.closer,
		name:    log.name,
		fields:  fields,
	}
}

func (log *Logger) GetLevel() Level {
	return Level(log.level.Level())
}

func (log *Logger) GetLevelString() string {
	return log.GetLevel().String()
}

func (log *Logger) GetName() string {
	return log.name
}

// IsDebug is a shortcut to guard expensive debug fields.
func (log *Logger) IsDebug() bool {
	return log.GetLevel() == DebugLevel
}

// Named returns a child logger whose name is appended to the parent's,
// e.g. "venue.matching".
func (log *Logger) Named(name string) *Logger {
	c := log.Clone()
	newName := name
	if log.name != "" {
		newName = fmt.Sprintf("%s.%s", log.name, name)
	}
	c.Logger = c.Logger.Named(name)
	c.name = newName
	return c
}

func (log *Logger) SetLevel(level Level) {
	lvl := level.ZapLevel()
	if log.level.Level() == lvl {
		return
	}
	log.level.SetLevel(lvl)
}

func (log *Logger) With(fields ...zap.Field) *Logger {
	c := log.Clone()
	c.Logger = c.Logger.With(fields...)
	c.fields = append(c.fields, fields...)
	return c
}

// AtExit flushes the logs before exiting the process. Useful when an
// app shuts down so we store all logging possible. This is meant to be used
// with defer when initializing your logger.
func (log *Logger) AtExit() {
	if log.Logger != nil {
		_ = log.Logger.Sync()
	}
	if log.closer != nil {
		_ = log.closer.Close()
	}
}

// Infof is used by libraries expecting a printf style logger (kafka-go).
func (log *Logger) Infof(s string, args ...interface{}) {
	log.Logger.WithOptions(zap.AddCallerSkip(1)).Sugar().Infof(strings.TrimSpace(s), args...)
}

// Errorf is used by libraries expecting a printf style logger (kafka-go).
func (log *Logger) Errorf(s string, args ...interface{}) {
	log.Logger.WithOptions(zap.AddCallerSkip(1)).Sugar().Errorf(strings.TrimSpace(s), args...)
}

func devEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		CallerKey:      "C",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "L",
		LineEnding:     "\n",
		MessageKey:     "M",
		NameKey:        "N",
		TimeKey:        "T",
	})
}

func prodEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "level",
		LineEnding:     "\n",
		MessageKey:     "message",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		TimeKey:        "@timestamp",
	})
}

// NewDevLogger creates a console logger at debug level.
func NewDevLogger() *Logger {
	return newLogger(devEncoder(), zapcore.Lock(os.Stdout), DebugLevel)
}

// NewProdLogger creates a JSON logger at info level.
func NewProdLogger() *Logger {
	return newLogger(prodEncoder(), zapcore.Lock(os.Stdout), InfoLevel)
}

// NewTestLogger creates a logger discarding everything below error level so
// test output stays readable.
func NewTestLogger() *Logger {
	return newLogger(devEncoder(), zapcore.AddSync(io.Discard), ErrorLevel)
}

// NewLoggerFromConfig builds the logger described by the configuration. When
// a log file is configured the output is duplicated to a rotating file.
func NewLoggerFromConfig(cfg Config) *Logger {
	var (
		encoder = devEncoder()
		level   = DebugLevel
	)
	if cfg.Environment == "prod" {
		encoder, level = prodEncoder(), InfoLevel
	}

	out := zapcore.Lock(os.Stdout)
	if cfg.File.Path == "" {
		return newLogger(encoder, out, level)
	}

	rotate := &lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSizeMB,
		MaxBackups: cfg.File.MaxBackups,
		MaxAge:     cfg.File.MaxAgeDays,
		Compress:   cfg.File.Compress,
	}
	log := newLogger(encoder, zapcore.NewMultiWriteSyncer(out, zapcore.AddSync(rotate)), level)
	log.closer = rotate
	return log
}
