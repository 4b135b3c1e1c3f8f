// Package logging provides structured logging for the aquaclean tools.
//
// Logging is silent by default so CLI output stays clean. Set the
// AQUACLEAN_LOG_LEVEL environment variable (debug, info, warn, error) to
// enable console logging, or call Initialize with an explicit level.
//
// The package wraps a global zap logger with package-level helpers
// (Info, Debug, Warn, Error) plus protocol-oriented helpers for dumping
// raw link packets in hex and ASCII.
package logging
