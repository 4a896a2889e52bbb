package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type writeCmd struct {
	name string
	fn   func(context.Context) error
}

// WriterQueue runs writes one at a time in submission order, retrying
// failed writes a few times before giving up.
type WriterQueue struct {
	logger  *slog.Logger
	queue   chan writeCmd
	backoff time.Duration
	stopped chan struct{}

	mu      sync.Mutex
	closed  bool
	pending int
	// idle is closed while pending is zero.
	idle chan struct{}
}

func NewWriterQueue(logger *slog.Logger, capacity int) *WriterQueue {
	if capacity <= 0 {
		capacity = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	idle := make(chan struct{})
	close(idle)

	return &WriterQueue{
		logger:  logger,
		queue:   make(chan writeCmd, capacity),
		backoff: 300 * time.Millisecond,
		stopped: make(chan struct{}),
		idle:    idle,
	}
}

// Enqueue schedules fn, blocking while the queue is full. It reports false
// and drops fn once the queue is closed or its worker has stopped.
func (w *WriterQueue) Enqueue(name string, fn func(context.Context) error) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("write dropped: queue closed", "cmd", name)
		return false
	}
	if w.pending == 0 {
		w.idle = make(chan struct{})
	}
	w.pending++
	w.mu.Unlock()

	cmd := writeCmd{name: name, fn: fn}
	select {
	case w.queue <- cmd:
	case <-w.stopped:
		w.logger.Warn("write dropped: queue stopped", "cmd", name)
		w.finish()
		return false
	}
	// The worker may have stopped right after the send.
	select {
	case <-w.stopped:
		w.dropQueued()
	default:
	}

	return true
}

// Start runs the worker until ctx is done. Writes still queued at that point
// are dropped.
func (w *WriterQueue) Start(ctx context.Context) {
	go func() {
		defer w.stop()
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-w.queue:
				w.runWithRetry(ctx, cmd)
				w.finish()
			}
		}
	}()
}

// Close refuses further writes. Already queued writes still run.
func (w *WriterQueue) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Idle returns a channel that is closed once every accepted write has been
// attempted or dropped.
func (w *WriterQueue) Idle() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.idle
}

// Wait blocks until the queue is idle.
func (w *WriterQueue) Wait() {
	<-w.Idle()
}

func (w *WriterQueue) finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending--
	if w.pending == 0 {
		close(w.idle)
	}
}

func (w *WriterQueue) stop() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	close(w.stopped)
	w.dropQueued()
}

func (w *WriterQueue) dropQueued() {
	for {
		select {
		case cmd := <-w.queue:
			w.logger.Warn("write dropped: queue stopped", "cmd", cmd.name)
			w.finish()
		default:
			return
		}
	}
}

func (w *WriterQueue) runWithRetry(ctx context.Context, cmd writeCmd) {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := cmd.fn(ctx)
		if err == nil {
			w.logger.Debug("write done", "cmd", cmd.name, "attempt", attempt)
			return
		}
		w.logger.Error("write failed", "cmd", cmd.name, "attempt", attempt, "error", err)
		if attempt == maxAttempts {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * w.backoff):
		}
	}
}
