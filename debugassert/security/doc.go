// Package security decides which key/value pairs are too sensitive to leave
// the process. Assertion details, logs and span attributes pass their keys
// through it before rendering values.
package security
