// Package logging provides structured logging for the device service.
//
// It wraps log/slog so that every component logs with the same shape:
// JSON in production, text for local work, and default service and
// version fields on each entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	registry.SetLogger(logger.Component("registry"))
//	logger.Info("listening", "port", cfg.Port)
//
// Never log the remote specs API key. Person names appear in booking
// logs at debug level only.
package logging
