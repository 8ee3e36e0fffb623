// Package logging provides structured logging for ssdpscan.
//
// This package wraps a zap logger with convenience functions used throughout
// the discovery engine. Logging is silent unless a level is configured, so
// the CLI prints only its own output by default.
//
// # Log Levels
//
//   - Debug: Raw datagrams (hex/ascii dumps), session state transitions, cache hits
//   - Info: Search start/finish, devices discovered
//   - Warn: Per-adapter transport failures, failed description fetches
//   - Error: Failures that abort a CLI command
//
// # Structured Logging
//
//	logging.Info("Device discovered",
//	    zap.String("udn", device.UDN),
//	    zap.String("location", location),
//	    zap.String("local_addr", localAddr.String()),
//	)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When Initialize is called with an empty level the SSDPSCAN_LOG_LEVEL
// environment variable is consulted.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
