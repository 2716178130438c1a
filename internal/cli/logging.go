package cli

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig selects the logger built for a command run.
type LogConfig struct {
	// Component is attached to every entry, e.g. "generate".
	Component string
	// Level is the minimum severity: debug, info, warn or error.
	Level string
}

// NewLogger builds a console zap logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level == "" {
		level.SetLevel(zapcore.InfoLevel)
	} else if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		return nil, newUsageError("unknown log level " + cfg.Level + " (allowed: debug, info, warn, error)")
	}

	encoderConfig := zapcore.EncoderConfig{
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	logger := zap.New(core)
	if cfg.Component != "" {
		logger = logger.Named(cfg.Component)
	}
	return logger, nil
}
