// Package log defines the logging interface and typed fields used by the
// assertion and runtime packages.
//
// Two implementations live here: NopLogger, which drops everything, and
// GoLogger, which writes through the standard library logger. The zap package
// provides the structured production implementation.
package log
