//go:build unit

package assert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LerianStudio/lib-debugassert/debugassert/log"
)

type logEntry struct {
	level  log.Level
	msg    string
	fields []log.Field
}

// testLogger records entries and Sync calls. It satisfies log.Logger.
type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
	syncs   int
}

func (logger *testLogger) Log(_ context.Context, level log.Level, msg string, fields ...log.Field) {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	logger.entries = append(logger.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (logger *testLogger) With(...log.Field) log.Logger { return logger }

func (logger *testLogger) WithGroup(string) log.Logger { return logger }

func (logger *testLogger) Enabled(log.Level) bool { return true }

func (logger *testLogger) Sync(context.Context) error {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	logger.syncs++

	return nil
}

func (logger *testLogger) messages() []string {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	out := make([]string, 0, len(logger.entries))
	for _, e := range logger.entries {
		out = append(out, e.msg)
	}

	return out
}

// find returns the first entry logged with msg.
func (logger *testLogger) find(msg string) (logEntry, bool) {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	for _, e := range logger.entries {
		if e.msg == msg {
			return e, true
		}
	}

	return logEntry{}, false
}

func (e logEntry) field(key string) (any, bool) {
	for _, f := range e.fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}

type presentation struct {
	title  string
	report *Report
}

type recordingPresenter struct {
	mu    sync.Mutex
	calls []presentation
	hook  func(ctx context.Context, report *Report)
	err   error
}

func (p *recordingPresenter) Present(ctx context.Context, title string, report *Report) error {
	p.mu.Lock()
	p.calls = append(p.calls, presentation{title: title, report: report})
	hook := p.hook
	p.mu.Unlock()

	if hook != nil {
		hook(ctx, report)
	}

	return p.err
}

func (p *recordingPresenter) presented() []presentation {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]presentation(nil), p.calls...)
}

type handoff struct {
	ctx         context.Context
	site        Site
	description string
	at          time.Time
}

type recordingHandler struct {
	mu    sync.Mutex
	calls []handoff
	fired chan handoff
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{fired: make(chan handoff, 16)}
}

func (h *recordingHandler) HandleFailure(ctx context.Context, site Site, description string) {
	call := handoff{ctx: ctx, site: site, description: description, at: time.Now()}

	h.mu.Lock()
	h.calls = append(h.calls, call)
	h.mu.Unlock()

	h.fired <- call
}

func (h *recordingHandler) handoffs() []handoff {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]handoff(nil), h.calls...)
}

func (h *recordingHandler) wait(t *testing.T, timeout time.Duration) handoff {
	t.Helper()

	select {
	case call := <-h.fired:
		return call
	case <-time.After(timeout):
		t.Fatal("fatal handler was not called")

		return handoff{}
	}
}

type scheduledTask struct {
	ctx   context.Context
	delay time.Duration
	task  func(ctx context.Context)
}

// manualScheduler holds tasks until runAll is called.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

func (s *manualScheduler) Schedule(ctx context.Context, delay time.Duration, task func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, scheduledTask{ctx: ctx, delay: delay, task: task})
}

func (s *manualScheduler) scheduled() []scheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]scheduledTask(nil), s.tasks...)
}

func (s *manualScheduler) runAll() {
	for _, st := range s.scheduled() {
		st.task(st.ctx)
	}
}

type fixture struct {
	presenter *recordingPresenter
	fallback  *recordingPresenter
	handler   *recordingHandler
	scheduler *manualScheduler
	logger    *testLogger
}

func (f *fixture) presented() []presentation {
	return f.presenter.presented()
}

// newRecordingDispatcher returns a dispatcher whose collaborators all record,
// with a one second delay and a scheduler that only runs tasks on demand.
func newRecordingDispatcher(t *testing.T, opts ...Option) (*Dispatcher, *fixture) {
	t.Helper()

	f := &fixture{
		presenter: &recordingPresenter{},
		fallback:  &recordingPresenter{},
		handler:   newRecordingHandler(),
		scheduler: &manualScheduler{},
		logger:    &testLogger{},
	}

	base := []Option{
		WithPresenter(f.presenter),
		WithFallbackPresenter(f.fallback),
		WithFatalHandler(f.handler),
		WithScheduler(f.scheduler),
		WithLogger(f.logger),
		WithDelay(time.Second),
	}

	return NewDispatcher(append(base, opts...)...), f
}
