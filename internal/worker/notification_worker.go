package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-service/internal/events"
)

const (
	DefaultNotificationWorkers = 2
	DefaultNotificationQueue   = 64
	deliveryTimeout            = 30 * time.Second
)

var (
	ErrQueueFull     = errors.New("notification queue full")
	ErrWorkerStopped = errors.New("notification worker stopped")
)

// NotificationWorker moves event handling off the publisher's goroutine.
// Subscribed events are queued and handled by a fixed set of goroutines.
type NotificationWorker struct {
	handle  events.EventHandler
	logger  *zap.Logger
	workers int
	queue   chan events.Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewNotificationWorker builds a worker around handle. Non-positive sizes
// fall back to the defaults.
func NewNotificationWorker(handle events.EventHandler, workers, queueSize int, logger *zap.Logger) *NotificationWorker {
	if workers <= 0 {
		workers = DefaultNotificationWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultNotificationQueue
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &NotificationWorker{
		handle:  handle,
		logger:  logger,
		workers: workers,
		queue:   make(chan events.Event, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Subscribe routes the given event types from d into the queue.
func (w *NotificationWorker) Subscribe(d events.Dispatcher, types ...events.EventType) {
	for _, t := range types {
		d.Subscribe(t, w.Enqueue)
	}
}

// Enqueue queues an event without blocking.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrWorkerStopped
	}
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker goroutines. Calling it again is a no-op.
func (w *NotificationWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	for range w.workers {
		w.wg.Add(1)
		go w.run()
	}
	w.logger.Info("notification worker started", zap.Int("workers", w.workers), zap.Int("queue", cap(w.queue)))
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for event := range w.queue {
		ctx, cancel := context.WithTimeout(w.ctx, deliveryTimeout)
		if err := w.handle(ctx, event); err != nil {
			w.logger.Error("notification failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.String("staff_id", event.StaffID),
				zap.Error(err))
		}
		cancel()
	}
}

// Stop stops accepting events and waits for the queue to drain. When ctx
// ends first, in-flight handlers are canceled and ctx's error is returned.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-done
		return ctx.Err()
	}
}
