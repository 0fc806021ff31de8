//go:build unit

package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/lib-debugassert/debugassert/log"
)

// testLogger captures log calls. It is shared across all runtime test files.
type testLogger struct {
	mu       sync.Mutex
	messages []string
	fields   [][]log.Field
	logged   chan struct{}
}

func newTestLogger() *testLogger {
	return &testLogger{logged: make(chan struct{}, 16)}
}

func (logger *testLogger) Log(_ context.Context, _ log.Level, msg string, fields ...log.Field) {
	logger.mu.Lock()
	logger.messages = append(logger.messages, msg)
	logger.fields = append(logger.fields, fields)
	logger.mu.Unlock()

	select {
	case logger.logged <- struct{}{}:
	default:
	}
}

func (logger *testLogger) waitForLog(timeout time.Duration) bool {
	select {
	case <-logger.logged:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (logger *testLogger) field(entry int, key string) (any, bool) {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	if entry >= len(logger.fields) {
		return nil, false
	}

	for _, f := range logger.fields[entry] {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}

func (logger *testLogger) count() int {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	return len(logger.messages)
}

type capturingReporter struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (r *capturingReporter) CaptureException(_ context.Context, err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
