package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	loggerEncoding   = "console"
	loggerMessageKey = "message"
	loggerLevelKey   = "level"
	loggerOutputPath = "stderr"
)

// NewApplicationLogger returns the console logger used by the ptree binary at info level.
func NewApplicationLogger() (*zap.Logger, error) {
	return NewApplicationLoggerWithLevel(zapcore.InfoLevel)
}

// NewApplicationLoggerWithLevel returns a console logger writing "LEVEL message fields"
// lines to stderr, without timestamps, callers or stack traces.
func NewApplicationLoggerWithLevel(level zapcore.Level) (*zap.Logger, error) {
	loggerConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          loggerEncoding,
		DisableCaller:     true,
		DisableStacktrace: true,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     loggerMessageKey,
			LevelKey:       loggerLevelKey,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{loggerOutputPath},
		ErrorOutputPaths: []string{loggerOutputPath},
	}
	return loggerConfig.Build()
}
