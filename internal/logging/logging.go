// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/disburse/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap logger writing to stderr. A disabled config yields a
// no-op logger unless verbose is set, which forces debug output on.
func New(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	if !cfg.Enabled && !verbose {
		return zap.NewNop(), nil
	}

	level := zapcore.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zcfg := buildConfig(cfg.Format)
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named("disburse"), nil
}

func buildConfig(format string) zap.Config {
	if strings.EqualFold(format, "json") {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
