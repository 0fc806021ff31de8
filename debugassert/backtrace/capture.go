package backtrace

import (
	"runtime"
)

const (
	// DefaultMaxDepth bounds the number of frames a zero Capturer records.
	DefaultMaxDepth = 256

	initialDepth = 32

	// runtime.Callers + Capturer.capture + the exported entry point.
	baseSkip = 3
)

// Capturer walks the current goroutine's stack. The zero value is ready to use.
type Capturer struct {
	// MaxDepth caps the number of frames recorded. Zero or negative means DefaultMaxDepth.
	MaxDepth int
}

var defaultCapturer Capturer

// Capture returns the stack of the calling goroutine, starting at the caller of Capture.
func Capture() Backtrace {
	return defaultCapturer.capture(0)
}

// CaptureSkip is Capture with skip additional frames dropped from the top.
// CaptureSkip(1) starts at the caller's caller.
func CaptureSkip(skip int) Backtrace {
	return defaultCapturer.capture(skip)
}

// Capture returns the stack of the calling goroutine, starting at the caller of Capture.
func (c Capturer) Capture() Backtrace {
	return c.capture(0)
}

// CaptureSkip is Capture with skip additional frames dropped from the top.
func (c Capturer) CaptureSkip(skip int) Backtrace {
	return c.capture(skip)
}

// capture never panics: if the walk fails for any reason the result is an
// empty, non-nil Backtrace.
func (c Capturer) capture(skip int) (bt Backtrace) {
	defer func() {
		if recover() != nil {
			bt = Backtrace{}
		}
	}()

	if skip < 0 {
		skip = 0
	}

	maxDepth := c.maxDepth()
	pcs := callers(baseSkip+skip, maxDepth)

	if len(pcs) == 0 {
		return Backtrace{}
	}

	return resolve(pcs, maxDepth)
}

func (c Capturer) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}

	return c.MaxDepth
}

// callers grows the PC buffer until the stack fits or maxDepth is reached.
// skip is relative to callers' caller.
func callers(skip, maxDepth int) []uintptr {
	size := min(initialDepth, maxDepth)

	for {
		pcs := make([]uintptr, size)
		// +1 accounts for callers itself.
		n := runtime.Callers(skip+1, pcs)

		if n < size || size >= maxDepth {
			return pcs[:n]
		}

		size = min(size*2, maxDepth)
	}
}

func resolve(pcs []uintptr, maxDepth int) Backtrace {
	frames := runtime.CallersFrames(pcs)
	bt := make(Backtrace, 0, len(pcs))

	for len(bt) < maxDepth {
		frame, more := frames.Next()

		bt = append(bt, Frame{
			PC:       frame.PC,
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})

		if !more {
			break
		}
	}

	return bt
}
