// Package monitoring routes diagnostic logging through a replaceable sink so
// the sampling path can emit throttled diagnostics in production while tests
// capture and count them.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced with SetLogger.
var Logf func(format string, v ...any) = log.Printf

// verbose gates Debugf. Off by default; the daemon's -verbose flag turns it on.
var verbose bool

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}

// SetVerbose enables or disables Debugf output.
func SetVerbose(v bool) { verbose = v }

// Debugf logs through Logf only when verbose logging is enabled. Used on the
// per-frame path where unconditional logging would flood at polling rate.
func Debugf(format string, v ...any) {
	if verbose {
		Logf(format, v...)
	}
}
