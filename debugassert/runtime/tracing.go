package runtime

import (
	"context"
	"errors"
	"fmt"

	constant "github.com/LerianStudio/lib-debugassert/debugassert/constants"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrPanic is the sentinel wrapped into errors recorded for recovered panics.
var ErrPanic = errors.New("panic")

// PanicSpanEventName is the event name used when recording panics on spans.
const PanicSpanEventName = constant.EventPanicRecovered

// RecordPanicToSpan records a recovered panic on the span carried by ctx.
func RecordPanicToSpan(ctx context.Context, panicValue any, stack []byte, goroutineName string) {
	RecordPanicToSpanWithComponent(ctx, panicValue, stack, "", goroutineName)
}

// RecordPanicToSpanWithComponent is RecordPanicToSpan with a component attribute.
// It is a no-op when ctx has no recording span.
func RecordPanicToSpanWithComponent(
	ctx context.Context,
	panicValue any,
	stack []byte,
	component, goroutineName string,
) {
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	value := formatPanicValue(panicValue)

	attrs := []attribute.KeyValue{
		attribute.String(constant.AttrPanicValue, value),
		attribute.String(constant.AttrPanicGoroutineName, goroutineName),
	}

	if component != "" {
		attrs = append(attrs, attribute.String(constant.AttrPanicComponent, component))
	}

	if len(stack) > 0 && !IsProductionMode() {
		attrs = append(attrs, attribute.String(constant.AttrPanicStack, string(stack)))
	}

	span.AddEvent(PanicSpanEventName, trace.WithAttributes(attrs...))
	span.RecordError(fmt.Errorf("%w: %s", ErrPanic, value))
	span.SetStatus(codes.Error, "panic recovered in "+goroutineName)
}
