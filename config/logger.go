package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger returns the configured zap logger for use by the program. Output
// goes to stderr so it never mixes with rendered documents on stdout.
func (c *Config) Logger() *zap.Logger {
	var level zapcore.Level
	switch c.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "normal":
		level = zapcore.InfoLevel
	default:
		return zap.NewNop()
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("lispdoc")
}
