package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New. production zap logger with iso8601 timestamps.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// NewDevelopment. human readable logger for the cli tools.
func NewDevelopment() (*zap.Logger, error) {
	return zap.NewDevelopment()
}
