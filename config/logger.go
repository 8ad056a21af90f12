package config

import (
	"github.com/tailorbook/tailorbook-api/logger"
)

var appLogger *logger.Logger

// InitLogger builds the process logger from the configuration
func InitLogger(cfg *Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	appLogger = log
	return log, nil
}

// GetLogger returns the process logger, or a no-op logger before InitLogger has run
func GetLogger() *logger.Logger {
	if appLogger == nil {
		return logger.Nop()
	}
	return appLogger
}

// SetLogger replaces the process logger (primarily for testing)
func SetLogger(log *logger.Logger) {
	appLogger = log
}
