// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components take a *Logger and tag it with Component. A nil logger is
// replaced by a no-op one through Or, so constructors never need to check.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	log := logger.Component("store")
//	log.Info("dispatch", zap.String("action", "BOOT"))
package logging
