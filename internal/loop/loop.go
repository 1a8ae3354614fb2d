package loop

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"logviewer-client/internal/logging"
)

// Loop runs posted functions one at a time, in post order, on the goroutine
// that called Run. Every piece of stream state is owned by that goroutine;
// other goroutines hand work to it through Post.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	logger *logging.Logger
}

func New(logger *logging.Logger) *Loop {
	if logger == nil {
		panic("loop.New: logger must not be nil")
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger.Component("loop"),
	}
}

// Post queues fn. It never blocks and is safe to call from fn itself.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is done. Work still queued at that point
// stays queued for the next Run.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("event loop started")
	for {
		for {
			fn, ok := l.pop()
			if !ok {
				break
			}
			l.call(fn)
			if ctx.Err() != nil {
				l.logger.Debug("event loop stopped", logging.Field("error", ctx.Err()))
				return ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped", logging.Field("error", ctx.Err()))
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Pending reports the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop callback panicked",
				logging.Field("panic", fmt.Sprint(r)),
				logging.Field("stack", string(debug.Stack())),
			)
		}
	}()
	fn()
}

// Inline runs posted functions immediately on the posting goroutine.
type Inline struct{}

func (Inline) Post(fn func()) {
	if fn != nil {
		fn()
	}
}
