package assert

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/LerianStudio/lib-debugassert/debugassert/backtrace"
)

// ErrAssertionFailed is the sentinel error for failed assertions.
var ErrAssertionFailed = errors.New("assertion failed")

// noBacktrace is rendered in a report whose stack could not be walked.
const noBacktrace = "<backtrace unavailable>"

// Site identifies the source location of a failed assertion.
type Site struct {
	Function string
	File     string
	Line     int
}

// String renders the site as "file:line (function)".
func (s Site) String() string {
	var sb strings.Builder

	sb.WriteString(s.File)
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(s.Line))

	if s.Function != "" {
		sb.WriteString(" (")
		sb.WriteString(s.Function)
		sb.WriteString(")")
	}

	return sb.String()
}

// Report describes one failed Check. It is built at the failure site, handed
// to the presenter, and its site and description are passed to the fatal
// handler once the grace delay has elapsed.
type Report struct {
	// ID correlates the notice, the log lines and the fatal handoff of one failure.
	ID          string
	Site        Site
	Description string
	Backtrace   backtrace.Backtrace
	Time        time.Time
}

// String renders the description followed by the backtrace, three blank-line
// separated, which is the layout operators see in the notice.
func (r *Report) String() string {
	if r == nil {
		return ""
	}

	trace := r.Backtrace.String()
	if trace == "" {
		trace = noBacktrace
	}

	return r.Description + "\n\n\n" + trace
}

// Err returns the report as a *ViolationError.
func (r *Report) Err() *ViolationError {
	if r == nil {
		return nil
	}

	return &ViolationError{
		ReportID:    r.ID,
		Site:        r.Site,
		Description: r.Description,
		Backtrace:   r.Backtrace,
	}
}

// ViolationError is the error raised by the fatal path. PanicHandler panics
// with it and ReporterPresenter forwards it to the error tracker.
type ViolationError struct {
	ReportID    string
	Site        Site
	Description string
	Backtrace   backtrace.Backtrace
}

// Error returns "assertion failed: <description> at <site>".
func (e *ViolationError) Error() string {
	if e == nil {
		return ErrAssertionFailed.Error()
	}

	return ErrAssertionFailed.Error() + ": " + e.Description + " at " + e.Site.String()
}

// Unwrap returns ErrAssertionFailed so errors.Is works across both assertion styles.
func (e *ViolationError) Unwrap() error {
	return ErrAssertionFailed
}
