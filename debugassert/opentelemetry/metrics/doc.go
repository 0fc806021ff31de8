// Package metrics wraps an OpenTelemetry meter with a small cached counter factory.
//
// The assert and runtime packages use it for assertion_failed_total,
// assertion_fatal_handoff_total and panic_recovered_total.
package metrics
