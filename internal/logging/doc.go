// Package logging provides structured logging for the proxycfg client.
//
// This package wraps a zap logger with package-level helpers. Logging is
// silent by default so that command output and the terminal UI are never
// interleaved with log lines; it is enabled with --log-level or the
// PROXYCFG_LOG_LEVEL environment variable.
//
// # Log Levels
//
//   - Debug: request and response details, websocket frames
//   - Info: loads, saves, logins, stream state changes
//   - Warn: rejected edits, malformed frames, failed loads
//   - Error: failed saves and transport errors
//
// # Output
//
// The terminal UI owns stdout while it runs, so logs can be sent to a file:
//
//	if err := logging.Initialize("debug", "/tmp/proxycfg.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// An empty output path writes to stderr.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
