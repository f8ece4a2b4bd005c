// Package logging builds the application's zap logger from configuration.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-ioc/framework/config"
)

// Log formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a logger for cfg. The json format uses zap's production
// encoder config, console uses the development one.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: invalid level: %q", cfg.Level)
	}

	var zc zap.Config
	switch cfg.Format {
	case FormatJSON, "":
		zc = zap.NewProductionConfig()
	case FormatConsole:
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: invalid format: %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// Must is like New but falls back to a no-op logger on error.
func Must(cfg config.LogConfig) *zap.Logger {
	logger, err := New(cfg)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
