// Package runtime provides panic-safe goroutine launching and panic telemetry.
//
// SafeGo and SafeGoWithContextAndComponent guard goroutines with a PanicPolicy.
// Recovered panics are logged, counted (panic_recovered_total), recorded on the
// active span and forwarded to the configured ErrorReporter. Production mode
// redacts stack traces and panic values from everything but the local log.
package runtime
