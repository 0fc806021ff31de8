package assert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/LerianStudio/lib-debugassert/debugassert/log"
	"github.com/LerianStudio/lib-debugassert/debugassert/runtime"
)

// Presenter shows a failure notice to whoever operates the process.
//
// Present is called synchronously on the failing goroutine, before the fatal
// handoff is scheduled. It may block, for example to wait for an operator,
// but the delay only starts once it returns.
type Presenter interface {
	Present(ctx context.Context, title string, report *Report) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, title string, report *Report) error

// Present calls f.
func (f PresenterFunc) Present(ctx context.Context, title string, report *Report) error {
	return f(ctx, title, report)
}

// LogPresenter writes the notice as one log entry.
type LogPresenter struct {
	Logger log.Logger
	// Level defaults to LevelError.
	Level log.Level
}

// Present logs the title with the report fields.
func (p *LogPresenter) Present(ctx context.Context, title string, report *Report) error {
	if p == nil || p.Logger == nil || report == nil {
		return nil
	}

	p.Logger.Log(ctx, p.Level, title,
		log.String("report_id", report.ID),
		log.String("description", report.Description),
		log.String("site", report.Site.String()),
		log.Any("backtrace", report.Backtrace.Lines()),
	)

	return nil
}

const bannerWidth = 72

// WriterPresenter writes a framed notice to Writer, stderr when nil.
type WriterPresenter struct {
	Writer io.Writer
}

// Present writes the title, the report ID, and the rendered report.
func (p *WriterPresenter) Present(_ context.Context, title string, report *Report) error {
	if report == nil {
		return nil
	}

	w := io.Writer(os.Stderr)
	if p != nil && p.Writer != nil {
		w = p.Writer
	}

	heavy := strings.Repeat("=", bannerWidth)
	light := strings.Repeat("-", bannerWidth)

	var sb strings.Builder

	sb.WriteString(heavy + "\n")
	sb.WriteString(title + "\n")
	sb.WriteString("report " + report.ID + " at " + report.Site.String() + "\n")
	sb.WriteString(light + "\n")
	sb.WriteString(report.String() + "\n")
	sb.WriteString(heavy + "\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write assertion notice: %w", err)
	}

	return nil
}

// ReporterPresenter forwards the report to an error tracking service.
type ReporterPresenter struct {
	// Reporter defaults to runtime.GetErrorReporter(). With neither set the
	// presenter does nothing.
	Reporter runtime.ErrorReporter
}

// Present sends the report as a *ViolationError. Outside production mode
// the backtrace is attached as a tag.
func (p *ReporterPresenter) Present(ctx context.Context, title string, report *Report) error {
	if report == nil {
		return nil
	}

	var reporter runtime.ErrorReporter
	if p != nil {
		reporter = p.Reporter
	}

	if reporter == nil {
		reporter = runtime.GetErrorReporter()
	}

	if reporter == nil {
		return nil
	}

	tags := map[string]string{
		"title":     title,
		"report_id": report.ID,
		"file":      report.Site.File,
		"line":      strconv.Itoa(report.Site.Line),
		"function":  report.Site.Function,
	}

	if !runtime.IsProductionMode() {
		tags["backtrace"] = runtime.TruncateStack(report.Backtrace.String())
	}

	reporter.CaptureException(ctx, report.Err(), tags)

	return nil
}

// MultiPresenter presents through every presenter in order and joins their errors.
type MultiPresenter []Presenter

// Present calls each non-nil presenter even when an earlier one failed.
func (m MultiPresenter) Present(ctx context.Context, title string, report *Report) error {
	var errs []error

	for _, p := range m {
		if p == nil {
			continue
		}

		if err := p.Present(ctx, title, report); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
