// Package assert provides fatal debug assertions and soft runtime assertions.
//
// # Fatal assertions
//
// A Dispatcher checks a condition. When it is false the dispatcher captures a
// backtrace, logs a Report, presents a notice through a Presenter, and after a
// grace delay hands the failing site and description to a FatalHandler, which
// by default exits the process with code 134. The caller keeps running during
// the delay, which gives an operator time to read the notice.
//
//	d := assert.NewDispatcher(assert.WithLogger(logger), assert.WithDelay(5*time.Second))
//	d.Check(ctx, balance >= 0, "balance must not be negative, got %d", balance)
//
// The package-level Check uses Default, which is configured from the
// DEBUGASSERT_* environment variables. Building with -tags noassert compiles
// it to a no-op.
//
// Only one notice is presented at a time. A failure raised while a notice is
// on screen, including one raised by the presenter itself, goes to the
// fallback presenter, so presentation never deadlocks. Each failure still gets
// its own report and its own handoff, and a scheduled handoff cannot be
// cancelled.
//
// # Soft assertions
//
// An Asserter returns an *AssertionError instead of terminating:
//
//	a := assert.New(ctx, logger, "transaction", "create")
//	if err := a.NotNil(ctx, config, "config must be loaded before server starts"); err != nil {
//	    return err
//	}
//
// Asserter.Fatal escalates its failures to a Dispatcher as well. Both error
// kinds unwrap to ErrAssertionFailed.
//
// # Observability
//
// Failures increment assertion_failed_total and handoffs increment
// assertion_fatal_handoff_total once InitAssertionMetrics has been called.
// When the context carries a recording span an assertion.failed event is
// added and the span status is set to error. Outside production mode soft
// assertion logs include the backtrace.
package assert
