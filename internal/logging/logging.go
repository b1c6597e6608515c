// Package logging builds the zap logger the tool runs with.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a logger for the given mode. "development" (or "dev") gets
// console output with debug level; anything else gets production JSON.
// Logs go to stderr so command output on stdout stays machine readable.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "dev", "development":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
