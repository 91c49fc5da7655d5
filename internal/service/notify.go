package service

import (
	"context"
	"fmt"
	"log/slog"

	"unlockmart/internal/model"
)

type notificationQueue interface {
	Enqueue(n model.Notification) bool
}

// Dispatcher hands order confirmations to the notification worker. Nothing
// it does can fail a placement.
type Dispatcher struct {
	queue notificationQueue
}

func NewDispatcher(queue notificationQueue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, account *model.Account, order *model.Order) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "order confirmation dispatch panicked", "order_code", order.OrderCode, "panic", r)
		}
	}()

	if d == nil || d.queue == nil {
		return
	}
	if account.Email == "" {
		slog.WarnContext(ctx, "no address for order confirmation", "order_code", order.OrderCode)
		return
	}

	n := model.Notification{
		To:      account.Email,
		Subject: "Order " + order.OrderCode + " received",
		Body: fmt.Sprintf("Hello %s,\r\n\r\nYour order %s for %s (%s) has been received. Current status: %s.\r\n",
			account.Name, order.OrderCode, order.ServiceName, order.Price.StringFixed(2), order.Status),
		Ref: order.OrderCode,
	}
	if !d.queue.Enqueue(n) {
		slog.WarnContext(ctx, "notification queue full, confirmation dropped", "order_code", order.OrderCode)
	}
}
