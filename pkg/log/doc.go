// Package log provides structured event logging for the transport core.
//
// This package defines the Logger interface and Event types for
// capturing activity at every layer of the stack: raw frame push/pop,
// transfer dispatch, session attach/detach, and response-promise
// resolution. It is separate from operational logging (slog); this is
// a complete, machine-readable trace suitable for replay and analysis,
// not human-facing diagnostics.
//
// # Basic usage
//
// Callers configure logging by passing a Logger via EngineConfig or a
// presentation.ClientOption:
//
//	// development: console via slog
//	eng, _ := transport.NewEngine(media, transport.EngineConfig{
//	    Logger: log.NewSlogAdapter(slog.Default()),
//	})
//
//	// production: binary trace file
//	fl, _ := log.NewFileLogger("/var/log/cyphal/session.clog")
//	eng, _ := transport.NewEngine(media, transport.EngineConfig{Logger: fl})
//
//	// both
//	eng, _ := transport.NewEngine(media, transport.EngineConfig{
//	    Logger: log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl),
//	})
//
// # File format
//
// Trace files use CBOR encoding with a .clog extension; Reader
// provides filtered, streaming playback of a captured trace.
package log
