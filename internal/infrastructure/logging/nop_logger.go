package logging

import "go.uber.org/zap"

// NewNopLogger returns a Logger that discards everything. Used by tests and
// by components constructed without a logger.
func NewNopLogger() Logger {
	return &zapLogger{
		cfg:    &LoggerConfig{Logger: "zap", Level: "fatal"},
		logger: zap.NewNop().Sugar(),
	}
}
