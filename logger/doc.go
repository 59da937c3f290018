// Package logger provides structured logging for lazyseq using zerolog.
//
// It supports JSON and console output, log level configuration and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.Debug("pipeline run finished", logger.Fields("run_id", id, "yielded", n))
package logger
