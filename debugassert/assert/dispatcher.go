package assert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/LerianStudio/lib-debugassert/debugassert/backtrace"
	constant "github.com/LerianStudio/lib-debugassert/debugassert/constants"
	"github.com/LerianStudio/lib-debugassert/debugassert/internal/nilcheck"
	"github.com/LerianStudio/lib-debugassert/debugassert/log"
	"github.com/LerianStudio/lib-debugassert/debugassert/runtime"
)

// Dispatcher turns a failed Check into a Report, presents it, and hands the
// failure to a FatalHandler once the grace delay has elapsed.
//
// A Dispatcher is safe for concurrent use. Every failure gets its own report
// and its own handoff; the only state shared between failures is the
// presentation guard, which lets one notice be presented at a time.
type Dispatcher struct {
	presenter Presenter
	fallback  Presenter
	handler   FatalHandler
	scheduler Scheduler
	capturer  backtrace.Capturer
	logger    log.Logger
	component string

	config Config
	title  string

	presenting  sync.Mutex
	fallingBack sync.Mutex

	now func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConfig replaces delay, title, language, unknown-file placeholder and
// exit code. Options applied after it still override single fields.
func WithConfig(cfg Config) Option {
	return func(d *Dispatcher) {
		d.config = cfg
	}
}

// WithPresenter sets the presenter used for the notice.
func WithPresenter(p Presenter) Option {
	return func(d *Dispatcher) {
		d.presenter = p
	}
}

// WithFallbackPresenter sets the presenter used for failures raised while a
// notice is already being presented.
func WithFallbackPresenter(p Presenter) Option {
	return func(d *Dispatcher) {
		d.fallback = p
	}
}

// WithFatalHandler sets the handler that receives the failure after the delay.
func WithFatalHandler(h FatalHandler) Option {
	return func(d *Dispatcher) {
		d.handler = h
	}
}

// WithScheduler sets the scheduler that runs the delayed handoff.
func WithScheduler(s Scheduler) Option {
	return func(d *Dispatcher) {
		d.scheduler = s
	}
}

// WithDelay sets the grace period between presentation and handoff.
// Negative values are treated as zero.
func WithDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		d.config.Delay = delay
	}
}

// WithTitle sets the notice title verbatim, bypassing localization.
func WithTitle(title string) Option {
	return func(d *Dispatcher) {
		d.config.Title = title
	}
}

// WithLanguage selects the language of the default notice title.
func WithLanguage(tag string) Option {
	return func(d *Dispatcher) {
		d.config.Language = tag
	}
}

// WithUnknownFile sets the placeholder used when the failing file cannot be resolved.
func WithUnknownFile(placeholder string) Option {
	return func(d *Dispatcher) {
		d.config.UnknownFile = placeholder
	}
}

// WithLogger sets the logger used for failure records and diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithCapturer sets the backtrace capturer.
func WithCapturer(c backtrace.Capturer) Option {
	return func(d *Dispatcher) {
		d.capturer = c
	}
}

// WithComponent labels metrics and span events emitted by the dispatcher.
func WithComponent(component string) Option {
	return func(d *Dispatcher) {
		d.component = component
	}
}

// NewDispatcher builds a Dispatcher. Without options it writes the notice to
// stderr, logs through a GoLogger and exits the process with code 134 five
// seconds after the failure.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		config: DefaultConfig(),
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	d.config = d.config.withDefaults()

	if nilcheck.Is(d.logger) {
		d.logger = &log.GoLogger{Level: log.LevelInfo}
	}

	if nilcheck.Is(d.presenter) {
		d.presenter = &WriterPresenter{}
	}

	if nilcheck.Is(d.fallback) {
		d.fallback = &LogPresenter{Logger: d.logger}
	}

	if nilcheck.Is(d.handler) {
		d.handler = &ExitHandler{Logger: d.logger, Code: d.config.ExitCode}
	}

	if nilcheck.Is(d.scheduler) {
		d.scheduler = &GoScheduler{Logger: d.logger}
	}

	d.title = d.config.Title
	if d.title == "" {
		d.title = Title(ParseLanguage(d.config.Language), d.config.Delay)
	}

	return d
}

// Delay returns the grace period between presentation and handoff.
func (d *Dispatcher) Delay() time.Duration {
	return d.config.Delay
}

// NoticeTitle returns the title presented with every notice.
func (d *Dispatcher) NoticeTitle() string {
	return d.title
}

// dispatcherFrames is the number of frames between the user and fail.
const dispatcherFrames = 1

// Check does nothing and returns nil when condition holds. Otherwise it
// captures a backtrace, presents a notice and schedules the fatal handoff,
// then returns the Report so the caller can continue until the handoff runs.
//
// The description is fmt.Sprintf(format, args...); with no args the format
// is used verbatim. The reported site is the caller of Check.
//
//	d.Check(ctx, balance >= 0, "balance must not be negative, got %d", balance)
func (d *Dispatcher) Check(ctx context.Context, condition bool, format string, args ...any) *Report {
	if condition {
		return nil
	}

	return d.fail(ctx, dispatcherFrames, nil, format, args)
}

// CheckAt is Check with an explicit site, for callers that report on behalf
// of another location such as generated code or an interpreter.
func (d *Dispatcher) CheckAt(ctx context.Context, condition bool, site Site, format string, args ...any) *Report {
	if condition {
		return nil
	}

	return d.fail(ctx, dispatcherFrames, &site, format, args)
}

func (d *Dispatcher) fail(ctx context.Context, callerFrames int, site *Site, format string, args []any) *Report {
	return d.dispatch(ctx, failureInfo{
		assertion:   "Check",
		component:   d.component,
		description: describe(format, args),
		site:        site,
		backtrace:   d.capturer.CaptureSkip(callerFrames + 1),
	})
}

type failureInfo struct {
	assertion   string
	component   string
	operation   string
	description string
	site        *Site
	backtrace   backtrace.Backtrace
}

//nolint:contextcheck // the handoff must outlive the caller's context
func (d *Dispatcher) dispatch(ctx context.Context, failure failureInfo) *Report {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx = context.WithoutCancel(ctx)

	report := &Report{
		ID:          newReportID(),
		Site:        d.resolveSite(failure.site, failure.backtrace),
		Description: failure.description,
		Backtrace:   failure.backtrace,
		Time:        d.now(),
	}

	d.logReport(ctx, report)
	recordAssertionObservability(ctx, assertionEvent{
		assertion: failure.assertion,
		message:   report.Description,
		stack:     report.Backtrace.Bytes(),
		component: failure.component,
		operation: failure.operation,
		extra: []attribute.KeyValue{
			attribute.String(constant.AttrAssertionReportID, report.ID),
			attribute.String(constant.AttrAssertionFile, report.Site.File),
			attribute.Int(constant.AttrAssertionLine, report.Site.Line),
		},
	})

	d.present(ctx, report)
	d.scheduleHandoff(ctx, report, failure.component)

	return report
}

func (d *Dispatcher) resolveSite(site *Site, bt backtrace.Backtrace) Site {
	var resolved Site

	switch {
	case site != nil:
		resolved = *site
	case len(bt) > 0:
		resolved = Site{Function: bt[0].Function, File: bt[0].File, Line: bt[0].Line}
	}

	if resolved.File == "" {
		resolved.File = d.config.UnknownFile
	}

	return resolved
}

func (d *Dispatcher) logReport(ctx context.Context, report *Report) {
	d.logger.Log(ctx, log.LevelError, "assertion failed",
		log.String("report_id", report.ID),
		log.String("description", report.Description),
		log.String("file", report.Site.File),
		log.Int("line", report.Site.Line),
		log.String("function", report.Site.Function),
		log.Duration("delay", d.config.Delay),
		log.Any("backtrace", report.Backtrace.Lines()),
	)
}

// present shows the notice through the primary presenter, or through the
// fallback when another notice is in flight. If the fallback is busy too the
// report has only been logged.
func (d *Dispatcher) present(ctx context.Context, report *Report) {
	var presenter Presenter

	switch {
	case d.presenting.TryLock():
		defer d.presenting.Unlock()

		presenter = d.presenter
	case d.fallingBack.TryLock():
		defer d.fallingBack.Unlock()

		presenter = d.fallback
	default:
		d.logger.Log(ctx, log.LevelWarn, "assertion notice skipped, presenters busy",
			log.String("report_id", report.ID))

		return
	}

	if err := safePresent(ctx, presenter, d.title, report); err != nil {
		log.SafeError(d.logger, ctx, "assertion notice presentation failed", err, runtime.IsProductionMode())
	}
}

func safePresent(ctx context.Context, presenter Presenter, title string, report *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("presenter panicked: %v", r)
		}
	}()

	return presenter.Present(ctx, title, report)
}

func (d *Dispatcher) scheduleHandoff(ctx context.Context, report *Report, component string) {
	site, description, id := report.Site, report.Description, report.ID

	d.scheduler.Schedule(ctx, d.config.Delay, func(ctx context.Context) {
		recordFatalHandoff(ctx, component)
		d.logger.Log(ctx, log.LevelError, "assertion grace period elapsed, handing off to fatal handler",
			log.String("report_id", id),
			log.String("file", site.File),
			log.Int("line", site.Line),
		)

		d.handler.HandleFailure(ctx, site, description)
	})
}

func describe(format string, args []any) string {
	if len(args) == 0 {
		return format
	}

	return fmt.Sprintf(format, args...)
}

func newReportID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return ""
	}

	return id.String()
}
