//go:build !noassert

package assert

import "context"

// Enabled reports whether the package-level Check is compiled in. Build with
// -tags noassert to turn it into a no-op.
const Enabled = true

// Check asserts condition through the Default dispatcher. See Dispatcher.Check.
//
//	assert.Check(x > 0, "x must be positive, got %d", x)
func Check(condition bool, format string, args ...any) *Report {
	if condition {
		return nil
	}

	return Default().fail(context.Background(), dispatcherFrames, nil, format, args)
}

// CheckContext is Check with a context for trace correlation.
func CheckContext(ctx context.Context, condition bool, format string, args ...any) *Report {
	if condition {
		return nil
	}

	return Default().fail(ctx, dispatcherFrames, nil, format, args)
}
