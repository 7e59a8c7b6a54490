// Package logger строит zap-логгер приложения: консоль плюс опциональный файл с ротацией.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Zap struct {
	*zap.Logger
}

type Option func(*options)

type options struct {
	console zapcore.WriteSyncer
	file    string
}

// WithConsole переопределяет вывод консоли (используется в тестах).
func WithConsole(w zapcore.WriteSyncer) Option {
	return func(o *options) { o.console = w }
}

// WithFile включает запись JSON-логов в файл с ротацией через lumberjack.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// New builds a logger. env "dev" gives a colored console encoder, anything
// else gives JSON. An unknown level falls back to info.
func New(env, level string, opts ...Option) (*Zap, error) {
	o := options{console: zapcore.Lock(os.Stdout)}
	for _, opt := range opts {
		opt(&o)
	}

	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(env), o.console, lvl),
	}

	if o.file != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   o.file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(encoder("prod"), fileWriter, lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	return &Zap{Logger: l}, nil
}

func encoder(env string) zapcore.Encoder {
	if env == "dev" {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// Nop возвращает логгер без вывода.
func Nop() *Zap {
	return &Zap{Logger: zap.NewNop()}
}
