package assert

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	constant "github.com/LerianStudio/lib-debugassert/debugassert/constants"
	"github.com/LerianStudio/lib-debugassert/debugassert/opentelemetry/metrics"
)

// AssertionSpanEventName is the event name used when recording assertion failures on spans.
const AssertionSpanEventName = constant.EventAssertionFailed

// AssertionMetrics provides assertion-related metrics using OpenTelemetry.
type AssertionMetrics struct {
	factory *metrics.MetricsFactory
}

var assertionFailedMetric = metrics.Metric{
	Name:        constant.MetricAssertionFailedTotal,
	Unit:        "1",
	Description: "Total number of failed assertions",
}

var assertionHandoffMetric = metrics.Metric{
	Name:        constant.MetricAssertionHandoffTotal,
	Unit:        "1",
	Description: "Total number of failed assertions handed to the fatal handler",
}

var (
	assertionMetricsInstance *AssertionMetrics
	assertionMetricsMu       sync.RWMutex
)

// InitAssertionMetrics initializes assertion metrics with the provided MetricsFactory.
// This should be called once during application startup after telemetry is initialized.
func InitAssertionMetrics(factory *metrics.MetricsFactory) {
	assertionMetricsMu.Lock()
	defer assertionMetricsMu.Unlock()

	if factory == nil {
		return
	}

	if assertionMetricsInstance != nil {
		return
	}

	assertionMetricsInstance = &AssertionMetrics{factory: factory}
}

// GetAssertionMetrics returns the singleton AssertionMetrics instance.
// Returns nil if InitAssertionMetrics has not been called.
func GetAssertionMetrics() *AssertionMetrics {
	assertionMetricsMu.RLock()
	defer assertionMetricsMu.RUnlock()

	return assertionMetricsInstance
}

// ResetAssertionMetrics clears the assertion metrics singleton (useful for tests).
func ResetAssertionMetrics() {
	assertionMetricsMu.Lock()
	defer assertionMetricsMu.Unlock()

	assertionMetricsInstance = nil
}

// RecordAssertionFailed increments the assertion_failed_total counter with labels.
// If metrics are not initialized, this is a no-op.
func (am *AssertionMetrics) RecordAssertionFailed(
	ctx context.Context,
	component, operation, assertion string,
) {
	am.add(ctx, assertionFailedMetric, map[string]string{
		"component": constant.SanitizeMetricLabel(component),
		"operation": constant.SanitizeMetricLabel(operation),
		"assertion": constant.SanitizeMetricLabel(assertion),
	})
}

// RecordFatalHandoff increments the assertion_fatal_handoff_total counter.
func (am *AssertionMetrics) RecordFatalHandoff(ctx context.Context, component string) {
	am.add(ctx, assertionHandoffMetric, map[string]string{
		"component": constant.SanitizeMetricLabel(component),
	})
}

func (am *AssertionMetrics) add(ctx context.Context, m metrics.Metric, labels map[string]string) {
	if am == nil || am.factory == nil {
		return
	}

	counter, err := am.factory.Counter(m)
	if err != nil {
		logAssertion(nil, fmt.Sprintf("failed to create assertion metric counter: %v", err))
		return
	}

	if err := counter.WithLabels(labels).AddOne(ctx); err != nil {
		logAssertion(nil, fmt.Sprintf("failed to record assertion metric: %v", err))
	}
}

type assertionEvent struct {
	assertion string
	message   string
	stack     []byte
	component string
	operation string
	extra     []attribute.KeyValue
}

func recordAssertionObservability(ctx context.Context, event assertionEvent) {
	GetAssertionMetrics().RecordAssertionFailed(ctx, event.component, event.operation, event.assertion)
	recordAssertionToSpan(ctx, event)
}

func recordFatalHandoff(ctx context.Context, component string) {
	GetAssertionMetrics().RecordFatalHandoff(ctx, component)
}

func recordAssertionToSpan(ctx context.Context, event assertionEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(constant.AttrAssertionName, event.assertion),
		attribute.String(constant.AttrAssertionMessage, event.message),
	}

	if event.component != "" {
		attrs = append(attrs, attribute.String(constant.AttrAssertionComponent, event.component))
	}

	if event.operation != "" {
		attrs = append(attrs, attribute.String(constant.AttrAssertionOperation, event.operation))
	}

	if len(event.stack) > 0 {
		attrs = append(attrs, attribute.String(constant.AttrAssertionStack, string(event.stack)))
	}

	attrs = append(attrs, event.extra...)

	span.AddEvent(AssertionSpanEventName, trace.WithAttributes(attrs...))
	span.RecordError(fmt.Errorf("%w: %s", ErrAssertionFailed, event.message))
	span.SetStatus(codes.Error, assertionStatusMessage(event.component, event.operation))
}

func assertionStatusMessage(component, operation string) string {
	switch {
	case component != "" && operation != "":
		return fmt.Sprintf("assertion failed in %s/%s", component, operation)
	case component != "":
		return "assertion failed in " + component
	case operation != "":
		return "assertion failed in " + operation
	default:
		return "assertion failed"
	}
}
