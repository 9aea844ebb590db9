// Package logging provides the service logger and helpers that keep
// credentials out of log output.
package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds the service logger. Local and development environments get
// console output; everything else gets production JSON.
func NewLogger(env string) (*zap.Logger, error) {
	switch env {
	case "local", "development":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
