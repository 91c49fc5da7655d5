package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"unlockmart/internal/model"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationWorker delivers queued messages in the background. Delivery
// failures are logged and dropped.
type NotificationWorker struct {
	mailer  Mailer
	queue   chan model.Notification
	limiter *rate.Limiter
	timeout time.Duration
	done    chan struct{}
}

type Option func(*NotificationWorker)

func WithTimeout(d time.Duration) Option {
	return func(w *NotificationWorker) { w.timeout = d }
}

func WithQueueSize(n int) Option {
	return func(w *NotificationWorker) { w.queue = make(chan model.Notification, n) }
}

// WithRate caps deliveries per second.
func WithRate(perSecond float64, burst int) Option {
	return func(w *NotificationWorker) { w.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func NewNotificationWorker(mailer Mailer, opts ...Option) *NotificationWorker {
	w := &NotificationWorker{
		mailer:  mailer,
		queue:   make(chan model.Notification, 256),
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enqueue never blocks. It reports false when the queue is full.
func (w *NotificationWorker) Enqueue(n model.Notification) bool {
	select {
	case w.queue <- n:
		return true
	default:
		return false
	}
}

// Start consumes the queue until ctx is done, then drains what is left
// with a fresh deadline per message.
func (w *NotificationWorker) Start(ctx context.Context) {
	defer close(w.done)

	slog.Info("starting notification worker")
	for {
		select {
		case <-ctx.Done():
			w.drain()
			slog.Info("notification worker stopped")
			return
		case n := <-w.queue:
			if err := w.limiter.Wait(ctx); err != nil {
				w.deliver(context.Background(), n)
				continue
			}
			w.deliver(ctx, n)
		}
	}
}

// Wait blocks until Start has returned.
func (w *NotificationWorker) Wait() {
	<-w.done
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case n := <-w.queue:
			w.deliver(context.Background(), n)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(parent context.Context, n model.Notification) {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	if err := w.mailer.Send(ctx, n.To, n.Subject, n.Body); err != nil {
		slog.Error("notification delivery failed", "ref", n.Ref, "to", n.To, "error", err)
		return
	}
	slog.Info("notification delivered", "ref", n.Ref, "to", n.To)
}
