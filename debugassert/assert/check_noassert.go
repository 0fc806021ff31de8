//go:build noassert

package assert

import "context"

// Enabled reports whether the package-level Check is compiled in.
const Enabled = false

// Check is a no-op under the noassert build tag.
func Check(bool, string, ...any) *Report { return nil }

// CheckContext is a no-op under the noassert build tag.
func CheckContext(context.Context, bool, string, ...any) *Report { return nil }
