package constant

// TelemetrySDKName identifies this library in OTEL instrumentation scopes.
const TelemetrySDKName = "lib-debugassert"

// MaxMetricLabelLength is the maximum length for metric labels to prevent cardinality explosion.
const MaxMetricLabelLength = 64

// Telemetry attribute key prefixes.
const (
	// AttrPrefixAssertion is the prefix for assertion event attributes.
	AttrPrefixAssertion = "assertion."
	// AttrPrefixPanic is the prefix for panic event attributes.
	AttrPrefixPanic = "panic."
)

// Assertion event attribute keys.
const (
	AttrAssertionName      = AttrPrefixAssertion + "name"
	AttrAssertionMessage   = AttrPrefixAssertion + "message"
	AttrAssertionComponent = AttrPrefixAssertion + "component"
	AttrAssertionOperation = AttrPrefixAssertion + "operation"
	AttrAssertionStack     = AttrPrefixAssertion + "stack"
	AttrAssertionReportID  = AttrPrefixAssertion + "report_id"
	AttrAssertionFile      = AttrPrefixAssertion + "file"
	AttrAssertionLine      = AttrPrefixAssertion + "line"
)

// Panic event attribute keys.
const (
	AttrPanicValue         = AttrPrefixPanic + "value"
	AttrPanicStack         = AttrPrefixPanic + "stack"
	AttrPanicGoroutineName = AttrPrefixPanic + "goroutine_name"
	AttrPanicComponent     = AttrPrefixPanic + "component"
)

// Telemetry metric names.
const (
	// MetricPanicRecoveredTotal is the counter metric for recovered panics.
	MetricPanicRecoveredTotal = "panic_recovered_total"
	// MetricAssertionFailedTotal is the counter metric for failed assertions.
	MetricAssertionFailedTotal = "assertion_failed_total"
	// MetricAssertionHandoffTotal counts fatal handoffs that actually ran after their grace delay.
	MetricAssertionHandoffTotal = "assertion_fatal_handoff_total"
)

// Telemetry event names.
const (
	// EventAssertionFailed is the span event name for assertion failures.
	EventAssertionFailed = "assertion.failed"
	// EventPanicRecovered is the span event name for recovered panics.
	EventPanicRecovered = "panic.recovered"
)

// SanitizeMetricLabel truncates a label value to MaxMetricLabelLength
// to prevent metric cardinality explosion in OTEL backends.
func SanitizeMetricLabel(value string) string {
	if len(value) > MaxMetricLabelLength {
		return value[:MaxMetricLabelLength]
	}

	return value
}
