// Package logging provides the structured logger shared by every core
// component, wrapping go.uber.org/zap the way the broader dependency graph
// already does for the libp2p stack.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-mode JSON logger scoped to a component name.
func New(component string) *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Named(component)
}

// NewDevelopment builds a console-encoded, debug-level logger for local runs.
func NewDevelopment(component string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Named(component)
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
