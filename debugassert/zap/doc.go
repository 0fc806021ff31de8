// Package zap adapts go.uber.org/zap to the log.Logger interface.
//
// New builds a logger per environment profile and tees every entry into the
// OpenTelemetry log bridge; Wrap adapts an existing *zap.Logger.
package zap
