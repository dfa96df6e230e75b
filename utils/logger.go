package utils

import (
	"log"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// logLevel resolves LOG_LEVEL, falling back to info in production and debug
// everywhere else.
func logLevel() zapcore.Level {
	if raw := viper.GetString("LOG_LEVEL"); raw != "" {
		if level, err := zapcore.ParseLevel(raw); err == nil {
			return level
		}
	}
	if IsProduction() {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// GetLogger returns the process-wide logger, building it on first use.
func GetLogger() *zap.Logger {
	loggerOnce.Do(func() {
		var cfg zap.Config
		if IsProduction() {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.Level = zap.NewAtomicLevelAt(logLevel())

		var err error
		logger, err = cfg.Build()
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	})
	return logger
}
