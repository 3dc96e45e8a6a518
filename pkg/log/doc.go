// Package log provides structured event capture for countdown runs.
//
// This package defines the Logger interface and Event type for recording
// what a countdown did: when runs started, every tick and the value it
// produced, external value changes, and why a run stopped. It is separate
// from operational logging (slog). Event capture is a complete
// machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/countdown/events.clog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys and the
// .clog extension. The countdown-log CLI tool provides viewing and
// statistics.
package log
