// Package logger provides structured logging for the kit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. Components take an
// optional *logger.Logger and fall back to the package-level default.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("oidc")
//	log.Info("keys refreshed", logger.Fields("keys", 3))
//
// Validation internals (which claim failed, key ids, issuers) are logged
// here and only here; responses to callers stay generic.
package logger
