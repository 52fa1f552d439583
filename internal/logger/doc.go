// Package logger provides leveled, component-filtered diagnostics for ytarchive.
//
// Progress lines meant for the user go through internal/report; this package
// carries request tracing, archive decisions and failures.
//
// Usage:
//
//	log := logger.WithComponent(logger.ComponentDataAPI)
//	log.Debug("list request", map[string]any{"resource": "videos", "ids": 50})
//
//	cfg, err := logger.EnvironmentConfig() // YTARCHIVE_LOG_LEVEL=DEBUG ...
//	l, err := logger.CreateLoggerFromConfig(cfg)
//	logger.SetGlobalLogger(l)
package logger
