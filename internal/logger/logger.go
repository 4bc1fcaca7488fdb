// Package logger provides structured logging with zap.
package logger

import "go.uber.org/zap"

// New creates a new zap.Logger depending on the environment. Every entry
// carries the service name.
func New(env, service string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("service", service))
}
