package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the process logger for the given environment.
// "local" gets the human-readable development config at DEBUG level,
// everything else gets the JSON production config at INFO level.
func NewLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
