package runtime

// PanicPolicy decides what a recovery function does after it has logged and
// recorded a panic.
type PanicPolicy int

const (
	// KeepRunning swallows the panic; the goroutine ends and the process continues.
	KeepRunning PanicPolicy = iota
	// CrashProcess re-panics after logging so the process terminates.
	CrashProcess
)

// String returns the policy name.
func (p PanicPolicy) String() string {
	switch p {
	case KeepRunning:
		return "KeepRunning"
	case CrashProcess:
		return "CrashProcess"
	default:
		return "Unknown"
	}
}
