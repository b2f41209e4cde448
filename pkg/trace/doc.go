// Package trace provides structured event tracing for the clock layer.
//
// Every tracker and driver operation is recorded as an Event: which
// resource, which operation, the resulting status, and the usage count
// afterwards. The trace is the clock layer's flight recorder - it is
// separate from operational logging (slog) and gives a complete
// machine-readable history for bring-up debugging and power analysis.
//
// # Basic Usage
//
// Consumers configure tracing by providing a Logger implementation:
//
//	// For development: events on the console via slog
//	logger := trace.NewSlogAdapter(slog.Default())
//
//	// For bench runs: binary trace file
//	logger, _ := trace.NewFileLogger("node.ctrace")
//
//	// Both at once
//	logger = trace.NewMultiLogger(
//	    trace.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
//	// Stamp boot session and node identity on every event
//	logger = trace.NewSessionLogger(logger, trace.NewSessionID(), nodeID)
//
// # File Format
//
// Trace files use CBOR encoding with integer keys and the .ctrace
// extension. The clocktrace CLI tool provides viewing, filtering, export
// and statistics.
package trace
