// Package eventlog provides structured flow logging for Homeline
// cloud integrations.
//
// This package defines the Logger interface and Event types for
// capturing flow-level events: state transitions, cloud API calls,
// store operations, raised notices and errors. It is separate from
// operational logging (slog) - the event log provides a complete
// machine-readable trace for debugging setup and reauth sessions.
// Events never contain credentials.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = eventlog.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = eventlog.NewFileLogger("/var/lib/homeline/flows.hlog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = eventlog.NewMultiLogger(
//	    eventlog.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding with integer keys and the .hlog
// extension. Reader streams events back with optional filtering.
package eventlog
