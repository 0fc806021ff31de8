package assert

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/lib-debugassert/debugassert/runtime"
)

// Scheduler runs a task after a delay. Once scheduled a task is not
// cancellable; implementations pass it a context that is never done.
type Scheduler interface {
	Schedule(ctx context.Context, delay time.Duration, task func(ctx context.Context))
}

const (
	schedulerComponent = "assert"
	handoffTaskName    = "fatal_handoff"
)

// GoScheduler runs every task on its own goroutine. A panic in the task is
// logged and recorded, then crashes the process.
type GoScheduler struct {
	Logger runtime.Logger
}

// Schedule starts a goroutine that sleeps for delay and runs task.
func (s *GoScheduler) Schedule(ctx context.Context, delay time.Duration, task func(ctx context.Context)) {
	var logger runtime.Logger
	if s != nil {
		logger = s.Logger
	}

	runtime.SafeGoWithContextAndComponent(detach(ctx), logger, schedulerComponent, handoffTaskName, runtime.CrashProcess,
		func(ctx context.Context) {
			if delay > 0 {
				time.Sleep(delay)
			}

			task(ctx)
		})
}

// QueueScheduler runs every task on one goroutine, in due order, like a main
// event queue. Tasks with the same due time run in scheduling order. A task
// that blocks delays the ones behind it.
type QueueScheduler struct {
	logger runtime.Logger

	mu     sync.Mutex
	tasks  taskQueue
	seq    uint64
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewQueueScheduler starts the queue goroutine.
func NewQueueScheduler(logger runtime.Logger) *QueueScheduler {
	q := &QueueScheduler{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	runtime.SafeGo(logger, "assert.queue_scheduler", runtime.CrashProcess, q.run)

	return q
}

// Schedule queues task to run after delay. After Close the task runs on its
// own goroutine instead, so a handoff is never dropped.
func (q *QueueScheduler) Schedule(ctx context.Context, delay time.Duration, task func(ctx context.Context)) {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		(&GoScheduler{Logger: q.logger}).Schedule(ctx, delay, task)

		return
	}

	q.seq++
	heap.Push(&q.tasks, &queuedTask{
		due:  time.Now().Add(max(delay, 0)),
		seq:  q.seq,
		ctx:  detach(ctx),
		task: task,
	})
	q.mu.Unlock()

	q.signal()
}

// Close stops accepting tasks. Queued tasks still run when due; Done is
// closed after the last one.
func (q *QueueScheduler) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

// Done is closed once the queue goroutine has exited.
func (q *QueueScheduler) Done() <-chan struct{} {
	return q.done
}

// Len returns the number of tasks waiting to run.
func (q *QueueScheduler) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.tasks.Len()
}

func (q *QueueScheduler) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *QueueScheduler) run() {
	defer close(q.done)

	for {
		q.mu.Lock()

		if q.tasks.Len() == 0 {
			closed := q.closed
			q.mu.Unlock()

			if closed {
				return
			}

			<-q.wake

			continue
		}

		next := q.tasks[0]
		wait := time.Until(next.due)

		if wait <= 0 {
			heap.Pop(&q.tasks)
			q.mu.Unlock()
			next.task(next.ctx)

			continue
		}

		q.mu.Unlock()

		select {
		case <-time.After(wait):
		case <-q.wake:
		}
	}
}

func detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return context.WithoutCancel(ctx)
}

type queuedTask struct {
	due  time.Time
	seq  uint64
	ctx  context.Context
	task func(ctx context.Context)
}

// taskQueue is a min-heap ordered by due time, then sequence.
type taskQueue []*queuedTask

func (tq taskQueue) Len() int { return len(tq) }

func (tq taskQueue) Less(i, j int) bool {
	if tq[i].due.Equal(tq[j].due) {
		return tq[i].seq < tq[j].seq
	}

	return tq[i].due.Before(tq[j].due)
}

func (tq taskQueue) Swap(i, j int) { tq[i], tq[j] = tq[j], tq[i] }

func (tq *taskQueue) Push(x any) {
	*tq = append(*tq, x.(*queuedTask))
}

func (tq *taskQueue) Pop() any {
	old := *tq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*tq = old[:n-1]

	return item
}
