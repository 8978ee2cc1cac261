package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type Log interface {
	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message string, args ...interface{})
	ErrorErr(message string, err error, args ...interface{})
	Fatal(message string, args ...interface{})
	FatalErr(message string, err error, args ...interface{})
	With(args ...interface{}) Log
}

type Logger struct {
	sugar *zap.SugaredLogger
}

func New(env string) *Logger {
	var cfg zap.Config

	switch env {
	case envLocal:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case envDev:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case envProd:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewExample()
	}
	return &Logger{sugar: z.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) With(args ...interface{}) Log {
	return &Logger{sugar: l.sugar.With(args...)}
}

func (l *Logger) Debug(message string, args ...interface{}) {
	l.sugar.Debugw(message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.sugar.Infow(message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.sugar.Warnw(message, args...)
}

func (l *Logger) Error(message string, args ...interface{}) {
	l.sugar.Errorw(message, args...)
}

func (l *Logger) Fatal(message string, args ...interface{}) {
	l.sugar.Errorw("FATAL: "+message, args...)
	l.Sync()
	os.Exit(1)
}

func (l *Logger) ErrorErr(message string, err error, args ...interface{}) {
	l.sugar.Errorw(message, append(args, Err(err))...)
}

func (l *Logger) FatalErr(message string, err error, args ...interface{}) {
	l.sugar.Errorw("FATAL: "+message, append(args, Err(err))...)
	l.Sync()
	os.Exit(1)
}

func Err(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}
