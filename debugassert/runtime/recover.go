package runtime

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/LerianStudio/lib-debugassert/debugassert/log"
)

// Logger is the subset of log.Logger that recovery needs.
type Logger interface {
	Log(ctx context.Context, level log.Level, msg string, fields ...log.Field)
}

// RecoverAndLog recovers from a panic, logs it with the stack trace and lets
// the goroutine finish. Use it in defer statements.
//
//	defer runtime.RecoverAndLog(logger, "worker")
func RecoverAndLog(logger Logger, name string) {
	if r := recover(); r != nil {
		logPanicWithStack(context.Background(), logger, name, r, debug.Stack())
	}
}

// RecoverAndCrash recovers from a panic, logs it and re-panics.
func RecoverAndCrash(logger Logger, name string) {
	if r := recover(); r != nil {
		logPanicWithStack(context.Background(), logger, name, r, debug.Stack())
		panic(r)
	}
}

// RecoverWithPolicyAndContext recovers from a panic, logs it, records metrics,
// span events and error reports, then applies policy.
//
//	defer runtime.RecoverWithPolicyAndContext(ctx, logger, "assert", "fatal_handoff", runtime.CrashProcess)
func RecoverWithPolicyAndContext(
	ctx context.Context,
	logger Logger,
	component, name string,
	policy PanicPolicy,
) {
	if recovered := recover(); recovered != nil {
		stack := debug.Stack()
		logPanicWithStack(ctx, logger, name, recovered, stack)
		recordPanicObservability(ctx, recovered, stack, component, name)

		if policy == CrashProcess {
			panic(recovered)
		}
	}
}

// HandlePanicValue processes a panic value that was already recovered elsewhere.
func HandlePanicValue(ctx context.Context, logger Logger, panicValue any, component, name string) {
	if panicValue == nil {
		return
	}

	stack := debug.Stack()
	logPanicWithStack(ctx, logger, name, panicValue, stack)
	recordPanicObservability(ctx, panicValue, stack, component, name)
}

// SafeGo launches fn in a goroutine guarded by RecoverAndLog or RecoverAndCrash.
func SafeGo(logger Logger, name string, policy PanicPolicy, fn func()) {
	go func() {
		if policy == CrashProcess {
			defer RecoverAndCrash(logger, name)
		} else {
			defer RecoverAndLog(logger, name)
		}

		fn()
	}()
}

// SafeGoWithContextAndComponent launches fn in a goroutine with full
// observability on panic. The assertion dispatcher uses it with CrashProcess
// for the delayed fatal handoff, so a panicking fatal handler still ends the
// process after its panic has been recorded.
func SafeGoWithContextAndComponent(
	ctx context.Context,
	logger Logger,
	component, name string,
	policy PanicPolicy,
	fn func(ctx context.Context),
) {
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer RecoverWithPolicyAndContext(ctx, logger, component, name, policy)

		fn(ctx)
	}()
}

func logPanicWithStack(ctx context.Context, logger Logger, name string, panicValue any, stack []byte) {
	if logger == nil {
		return
	}

	fields := []log.Field{
		log.String("source", name),
		log.String("value", formatPanicValue(panicValue)),
	}

	if !IsProductionMode() {
		fields = append(fields, log.String("stack_trace", string(stack)))
	}

	logger.Log(ctx, log.LevelError, "panic recovered", fields...)
}

func recordPanicObservability(
	ctx context.Context,
	panicValue any,
	stack []byte,
	component, name string,
) {
	recordPanicMetric(ctx, component, name)
	RecordPanicToSpanWithComponent(ctx, panicValue, stack, component, name)
	reportPanicToErrorService(ctx, panicValue, stack, component, name)
}

func formatPanicValue(value any) string {
	if value == nil {
		return "<nil>"
	}

	switch val := value.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", value)
	}
}
