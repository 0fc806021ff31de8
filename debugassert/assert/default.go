package assert

import (
	"context"
	"sync"

	"github.com/LerianStudio/lib-debugassert/debugassert/log"
)

var (
	defaultDispatcher   *Dispatcher
	defaultDispatcherMu sync.RWMutex
)

// Default returns the process-wide Dispatcher used by the package-level
// Check. It is built from ConfigFromEnv on first use unless SetDefault ran.
func Default() *Dispatcher {
	defaultDispatcherMu.RLock()
	d := defaultDispatcher
	defaultDispatcherMu.RUnlock()

	if d != nil {
		return d
	}

	defaultDispatcherMu.Lock()
	defer defaultDispatcherMu.Unlock()

	if defaultDispatcher == nil {
		defaultDispatcher = newEnvDispatcher()
	}

	return defaultDispatcher
}

// SetDefault replaces the process-wide Dispatcher and returns the previous
// one, which may be nil. Passing nil makes the next Default call rebuild it
// from the environment.
func SetDefault(d *Dispatcher) *Dispatcher {
	defaultDispatcherMu.Lock()
	defer defaultDispatcherMu.Unlock()

	previous := defaultDispatcher
	defaultDispatcher = d

	return previous
}

func newEnvDispatcher() *Dispatcher {
	logger := &log.GoLogger{Level: log.LevelInfo}

	cfg, err := ConfigFromEnv()
	if err != nil {
		log.SafeError(logger, context.Background(), "using default assertion config", err, false)
	}

	return NewDispatcher(WithConfig(cfg), WithLogger(logger))
}
