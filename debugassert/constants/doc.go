// Package constant holds telemetry names shared by the assert and runtime packages.
//
// Keep this package free of runtime behavior.
package constant
