// Package logging provides structured logging for the gearbook service.
//
// It wraps the standard library's log/slog with service-wide defaults:
// a configurable level and format, a fixed service attribute, and the
// build version attached to every record.
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("server starting", "port", cfg.API.Port)
//
//	apiLogger := logger.With("component", "api")
package logging
