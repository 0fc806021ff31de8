// Package debugassert provides fatal debug assertions for Go services.
//
// A failed assertion captures a backtrace, presents a notice to whoever
// operates the process, and after a grace delay hands the failure to a
// fatal handler that terminates the process. The root package holds the
// environment helpers used to configure it; the pieces live in subpackages:
//
//	backtrace  stack capture and symbolization
//	assert     the dispatcher, presenters, fatal handlers and soft asserter
//	runtime    guarded goroutines, panic telemetry, error reporter
//	log, zap   logging abstraction and its zap implementation
//
// Typical usage:
//
//	assert.SetDefault(assert.NewDispatcher(assert.WithLogger(logger)))
//	assert.Check(n > 0, "n must be positive, got %d", n)
package debugassert
