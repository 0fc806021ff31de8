package assert

import (
	"context"
	"os"
	"time"

	"github.com/LerianStudio/lib-debugassert/debugassert/log"
)

// FatalHandler receives a failed assertion once its grace delay has elapsed.
// Implementations are expected not to return control to the program in a
// meaningful way: they terminate the process or unwind the goroutine.
type FatalHandler interface {
	HandleFailure(ctx context.Context, site Site, description string)
}

// FatalHandlerFunc adapts a function to FatalHandler.
type FatalHandlerFunc func(ctx context.Context, site Site, description string)

// HandleFailure calls f.
func (f FatalHandlerFunc) HandleFailure(ctx context.Context, site Site, description string) {
	f(ctx, site, description)
}

// DefaultExitCode matches a process killed by SIGABRT.
const DefaultExitCode = 134

const defaultSyncTimeout = 2 * time.Second

// ExitHandler logs the failure, flushes the logger and exits the process.
type ExitHandler struct {
	Logger log.Logger
	// Code defaults to DefaultExitCode.
	Code int
	// Exit defaults to os.Exit.
	Exit func(code int)
	// SyncTimeout bounds the logger flush, two seconds by default.
	SyncTimeout time.Duration
}

// HandleFailure terminates the process.
func (h *ExitHandler) HandleFailure(ctx context.Context, site Site, description string) {
	if ctx == nil {
		ctx = context.Background()
	}

	code := h.Code
	if code == 0 {
		code = DefaultExitCode
	}

	if h.Logger != nil {
		h.Logger.Log(ctx, log.LevelError, "fatal assertion, terminating process",
			log.String("file", site.File),
			log.Int("line", site.Line),
			log.String("function", site.Function),
			log.String("description", description),
			log.Int("exit_code", code),
		)

		timeout := h.SyncTimeout
		if timeout <= 0 {
			timeout = defaultSyncTimeout
		}

		syncCtx, cancel := context.WithTimeout(ctx, timeout)
		_ = h.Logger.Sync(syncCtx)

		cancel()
	}

	exit := h.Exit
	if exit == nil {
		exit = os.Exit
	}

	exit(code)
}

// PanicHandler panics with a *ViolationError. Run under GoScheduler, the
// panic is recorded and then crashes the process; tests can recover it.
type PanicHandler struct{}

// HandleFailure panics.
func (PanicHandler) HandleFailure(_ context.Context, site Site, description string) {
	panic(&ViolationError{Site: site, Description: description})
}
