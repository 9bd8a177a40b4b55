// Package logging provides structured logging for rodbus.
//
// This package wraps zap with convenience functions for the logging patterns
// used throughout the client, the simulator, and the CLI tools. Logging is
// silent unless a level is configured, so library consumers and scripted CLI
// invocations get no unexpected output.
//
// # Log Levels
//
//   - Debug: frame hex dumps, transaction correlation details
//   - Info: connection lifecycle, server start/stop
//   - Warn: dropped connections, failed transactions, reconnects
//   - Error: startup failures, critical errors
//
// # Configuration
//
// Initialize at startup, either explicitly or from the RODBUS_LOG_LEVEL
// environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Connected to endpoint",
//	    zap.String("endpoint", "tcp://192.168.1.100:502"),
//	    zap.Uint8("unit", 1),
//	)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
