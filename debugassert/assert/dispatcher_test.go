//go:build unit

package assert

import (
	"context"
	"errors"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	constant "github.com/LerianStudio/lib-debugassert/debugassert/constants"
	"github.com/LerianStudio/lib-debugassert/debugassert/log"
	"github.com/LerianStudio/lib-debugassert/debugassert/opentelemetry/metrics"
)

func TestCheck_TrueConditionHasNoSideEffects(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)

	report := d.Check(t.Context(), true, "never formatted %d", 1)

	assert.Nil(t, report)
	assert.Empty(t, f.presented())
	assert.Empty(t, f.fallback.presented())
	assert.Empty(t, f.scheduler.scheduled())
	assert.Empty(t, f.logger.messages())
}

func TestCheck_FailureProducesReport(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)
	x := -1

	_, file, line, ok := goruntime.Caller(0)
	require.True(t, ok)
	report := d.Check(t.Context(), x > 0, "x must be positive, got %d", x)

	require.NotNil(t, report)
	assert.Equal(t, "x must be positive, got -1", report.Description)
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.Time.IsZero())

	require.GreaterOrEqual(t, report.Backtrace.Len(), 1)
	assert.Contains(t, report.Backtrace[0].Function, "TestCheck_FailureProducesReport")

	assert.Equal(t, file, report.Site.File)
	assert.Equal(t, line+1, report.Site.Line)
	assert.Contains(t, report.Site.Function, "TestCheck_FailureProducesReport")

	presented := f.presented()
	require.Len(t, presented, 1)
	assert.Same(t, report, presented[0].report)
	assert.Equal(t, d.NoticeTitle(), presented[0].title)

	scheduled := f.scheduler.scheduled()
	require.Len(t, scheduled, 1)
	assert.Equal(t, time.Second, scheduled[0].delay)
	assert.Empty(t, f.handler.handoffs(), "handoff must wait for the scheduler")

	f.scheduler.runAll()

	calls := f.handler.handoffs()
	require.Len(t, calls, 1)
	assert.Equal(t, report.Site, calls[0].site)
	assert.Equal(t, "x must be positive, got -1", calls[0].description)
}

func TestCheck_NoArgsUsesFormatVerbatim(t *testing.T) {
	t.Parallel()

	d, _ := newRecordingDispatcher(t)

	report := d.Check(t.Context(), false, "100% broken")

	require.NotNil(t, report)
	assert.Equal(t, "100% broken", report.Description)
}

func TestCheck_NilContext(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)

	//nolint:staticcheck // intentionally passing nil ctx
	report := d.Check(nil, false, "nil context")

	require.NotNil(t, report)
	require.Len(t, f.scheduler.scheduled(), 1)
	assert.NotNil(t, f.scheduler.scheduled()[0].ctx)
}

func TestCheckAt_UsesExplicitSite(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)
	site := Site{Function: "gen.Rule42", File: "rules.dsl", Line: 42}

	report := d.CheckAt(t.Context(), false, site, "rule %s violated", "42")

	require.NotNil(t, report)
	assert.Equal(t, site, report.Site)
	assert.GreaterOrEqual(t, report.Backtrace.Len(), 1)

	f.scheduler.runAll()
	require.Len(t, f.handler.handoffs(), 1)
	assert.Equal(t, site, f.handler.handoffs()[0].site)
}

func TestCheckAt_UnknownFilePlaceholder(t *testing.T) {
	t.Parallel()

	d, _ := newRecordingDispatcher(t, WithUnknownFile("<Unknow file>"))

	report := d.CheckAt(t.Context(), false, Site{Line: 7}, "no file")

	require.NotNil(t, report)
	assert.Equal(t, "<Unknow file>", report.Site.File)
	assert.Equal(t, 7, report.Site.Line)
}

func TestCheck_EmptyBacktraceFallsBackToUnknownFile(t *testing.T) {
	t.Parallel()

	// A stack that could not be walked leaves no frame to take the site from.
	d, _ := newRecordingDispatcher(t)
	report := d.dispatch(t.Context(), failureInfo{assertion: "Check", description: "empty"})

	require.NotNil(t, report)
	assert.Equal(t, DefaultUnknownFile, report.Site.File)
	assert.Contains(t, report.String(), noBacktrace)
}

func TestCheck_MultipleFailuresAreIndependent(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)

	first := d.Check(t.Context(), false, "first")
	second := d.Check(t.Context(), false, "second")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Site.Line, second.Site.Line)
	assert.Len(t, f.presented(), 2)
	require.Len(t, f.scheduler.scheduled(), 2)

	f.scheduler.runAll()

	calls := f.handler.handoffs()
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].description)
	assert.Equal(t, "second", calls[1].description)
}

func TestCheck_ReentrantFailureGoesToFallback(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)

	var inner *Report

	f.presenter.hook = func(ctx context.Context, _ *Report) {
		inner = d.Check(ctx, false, "raised while presenting")
	}

	done := make(chan *Report)

	go func() {
		done <- d.Check(context.Background(), false, "outer")
	}()

	var outer *Report

	select {
	case outer = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("re-entrant Check deadlocked")
	}

	require.NotNil(t, outer)
	require.NotNil(t, inner)

	require.Len(t, f.presented(), 1)
	assert.Same(t, outer, f.presented()[0].report)

	require.Len(t, f.fallback.presented(), 1)
	assert.Same(t, inner, f.fallback.presented()[0].report)

	assert.Len(t, f.scheduler.scheduled(), 2)
}

func TestCheck_BusyPresentersOnlyLog(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)

	var third *Report

	f.presenter.hook = func(ctx context.Context, _ *Report) {
		d.Check(ctx, false, "second")
	}
	f.fallback.hook = func(ctx context.Context, _ *Report) {
		third = d.Check(ctx, false, "third")
	}

	d.Check(t.Context(), false, "first")

	require.NotNil(t, third)
	assert.Len(t, f.presented(), 1)
	assert.Len(t, f.fallback.presented(), 1)
	assert.Len(t, f.scheduler.scheduled(), 3)

	entry, ok := f.logger.find("assertion notice skipped, presenters busy")
	require.True(t, ok)

	id, _ := entry.field("report_id")
	assert.Equal(t, third.ID, id)
}

func TestCheck_PresenterErrorStillSchedulesHandoff(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)
	f.presenter.err = errors.New("display unavailable")

	report := d.Check(t.Context(), false, "boom")

	require.NotNil(t, report)
	assert.Len(t, f.scheduler.scheduled(), 1)
	assert.Contains(t, f.logger.messages(), "assertion notice presentation failed")
}

func TestCheck_PresenterPanicIsContained(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t, WithPresenter(PresenterFunc(
		func(context.Context, string, *Report) error { panic("presenter exploded") },
	)))

	var report *Report

	require.NotPanics(t, func() {
		report = d.Check(t.Context(), false, "boom")
	})

	require.NotNil(t, report)
	assert.Len(t, f.scheduler.scheduled(), 1)

	entry, ok := f.logger.find("assertion notice presentation failed")
	require.True(t, ok)

	errValue, _ := entry.field("error")
	require.Error(t, errValue.(error))
	assert.Contains(t, errValue.(error).Error(), "presenter exploded")

	// The presentation guard was released.
	d.Check(t.Context(), false, "again")
	assert.Empty(t, f.fallback.presented())
}

type ctxKey struct{}

func TestCheck_HandoffIsDetachedFromCancellation(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)

	ctx, cancel := context.WithCancel(context.WithValue(t.Context(), ctxKey{}, "request-7"))
	cancel()

	d.Check(ctx, false, "cancelled caller")
	f.scheduler.runAll()

	calls := f.handler.handoffs()
	require.Len(t, calls, 1)
	require.NoError(t, calls[0].ctx.Err())
	assert.Equal(t, "request-7", calls[0].ctx.Value(ctxKey{}))
}

func TestCheck_HandoffFiresNoEarlierThanDelay(t *testing.T) {
	t.Parallel()

	const delay = 50 * time.Millisecond

	handler := newRecordingHandler()
	d := NewDispatcher(
		WithDelay(delay),
		WithPresenter(&recordingPresenter{}),
		WithFatalHandler(handler),
		WithScheduler(&GoScheduler{}),
		WithLogger(&testLogger{}),
	)

	start := time.Now()
	report := d.Check(t.Context(), false, "x must be positive, got %d", -1)

	call := handler.wait(t, 2*time.Second)

	assert.GreaterOrEqual(t, call.at.Sub(start), delay)
	assert.Equal(t, report.Site, call.site)
	assert.Equal(t, "x must be positive, got -1", call.description)
}

func TestCheck_LogsReport(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t)

	report := d.Check(t.Context(), false, "logged failure")

	entry, ok := f.logger.find("assertion failed")
	require.True(t, ok)
	assert.Equal(t, log.LevelError, entry.level)

	id, _ := entry.field("report_id")
	assert.Equal(t, report.ID, id)

	line, _ := entry.field("line")
	assert.Equal(t, report.Site.Line, line)

	delay, _ := entry.field("delay")
	assert.Equal(t, time.Second, delay)

	frames, _ := entry.field("backtrace")
	assert.NotEmpty(t, frames)

	f.scheduler.runAll()

	handoffEntry, ok := f.logger.find("assertion grace period elapsed, handing off to fatal handler")
	require.True(t, ok)

	id, _ = handoffEntry.field("report_id")
	assert.Equal(t, report.ID, id)
}

func TestCheck_RecordsSpanEvent(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	d, _ := newRecordingDispatcher(t, WithComponent("ledger"))

	ctx, span := provider.Tracer("test").Start(t.Context(), "post")
	report := d.Check(ctx, false, "traced failure")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 2, "assertion event plus the recorded error")
	assert.Equal(t, AssertionSpanEventName, events[0].Name)

	attrs := attribute.NewSet(events[0].Attributes...)

	id, ok := attrs.Value(constant.AttrAssertionReportID)
	require.True(t, ok)
	assert.Equal(t, report.ID, id.AsString())

	component, ok := attrs.Value(constant.AttrAssertionComponent)
	require.True(t, ok)
	assert.Equal(t, "ledger", component.AsString())

	line, ok := attrs.Value(constant.AttrAssertionLine)
	require.True(t, ok)
	assert.Equal(t, int64(report.Site.Line), line.AsInt64())

	assert.Equal(t, "assertion failed in ledger", spans[0].Status().Description)
}

func TestCheck_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	factory, err := metrics.NewMetricsFactory(provider.Meter("test"), nil)
	require.NoError(t, err)

	ResetAssertionMetrics()
	InitAssertionMetrics(factory)
	t.Cleanup(ResetAssertionMetrics)

	d, f := newRecordingDispatcher(t, WithComponent("ledger"))

	d.Check(t.Context(), false, "counted")
	d.Check(t.Context(), false, "counted again")
	f.scheduler.runAll()

	failed := collectSum(t, reader, constant.MetricAssertionFailedTotal)
	require.Len(t, failed.DataPoints, 1)
	assert.Equal(t, int64(2), failed.DataPoints[0].Value)

	assertion, ok := failed.DataPoints[0].Attributes.Value("assertion")
	require.True(t, ok)
	assert.Equal(t, "Check", assertion.AsString())

	handoffs := collectSum(t, reader, constant.MetricAssertionHandoffTotal)
	require.Len(t, handoffs.DataPoints, 1)
	assert.Equal(t, int64(2), handoffs.DataPoints[0].Value)
}

func TestNewDispatcher_Defaults(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()

	assert.Equal(t, DefaultDelay, d.Delay())
	assert.Equal(t, "Assertion failed. The process will exit in 5 seconds, take a screenshot now.", d.NoticeTitle())
	assert.IsType(t, &WriterPresenter{}, d.presenter)
	assert.IsType(t, &LogPresenter{}, d.fallback)
	assert.IsType(t, &GoScheduler{}, d.scheduler)

	handler, ok := d.handler.(*ExitHandler)
	require.True(t, ok)
	assert.Equal(t, DefaultExitCode, handler.Code)
}

func TestNewDispatcher_TitleFollowsDelayAndLanguage(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(WithDelay(3*time.Second), WithLanguage("zh-Hans"))

	assert.Equal(t, "断言崩溃，将在3秒后退出，请及时截图", d.NoticeTitle())
}

func TestNewDispatcher_TitleOverride(t *testing.T) {
	t.Parallel()

	d, f := newRecordingDispatcher(t, WithTitle("custom notice"))
	d.Check(t.Context(), false, "x")

	assert.Equal(t, "custom notice", f.presented()[0].title)
}

func TestNewDispatcher_OptionsAfterConfigWin(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Delay = time.Minute
	cfg.ExitCode = 3

	d := NewDispatcher(WithConfig(cfg), WithDelay(-time.Second), nil)

	assert.Equal(t, time.Duration(0), d.Delay(), "negative delay is clamped")

	handler, ok := d.handler.(*ExitHandler)
	require.True(t, ok)
	assert.Equal(t, 3, handler.Code)
}

func TestNewDispatcher_TypedNilCollaboratorsUseDefaults(t *testing.T) {
	t.Parallel()

	var (
		presenter *WriterPresenter
		handler   *ExitHandler
		scheduler *QueueScheduler
	)

	d := NewDispatcher(WithPresenter(presenter), WithFatalHandler(handler), WithScheduler(scheduler))

	assert.NotNil(t, d.presenter.(*WriterPresenter))
	assert.NotNil(t, d.handler.(*ExitHandler))
	assert.IsType(t, &GoScheduler{}, d.scheduler)
}

func TestCheck_BacktraceRendersCallerFile(t *testing.T) {
	t.Parallel()

	d, _ := newRecordingDispatcher(t)

	report := d.Check(t.Context(), false, "render")

	require.NotNil(t, report)
	assert.True(t, strings.HasPrefix(report.String(), "render\n\n\n"))
	assert.Contains(t, report.String(), filepath.Base(report.Site.File))
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Sum[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "expected Sum[int64], got %T", m.Data)

				return sum
			}
		}
	}

	t.Fatalf("metric %q not found", name)

	return metricdata.Sum[int64]{}
}
