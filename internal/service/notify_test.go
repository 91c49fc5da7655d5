package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockmart/internal/model"
)

func TestDispatcher_SendOrderConfirmation(t *testing.T) {
	q := &recordingQueue{}
	d := NewDispatcher(q)
	account := &model.Account{Name: "Ann", Email: "ann@example.com"}
	order := &model.Order{OrderCode: "ORD-1-ABCDEF", ServiceName: "Unlock", Price: decimal.RequireFromString("3.5"), Status: model.StatusInProgress}

	d.SendOrderConfirmation(context.Background(), account, order)

	sent := q.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ann@example.com", sent[0].To)
	assert.Equal(t, "ORD-1-ABCDEF", sent[0].Ref)
	assert.Contains(t, sent[0].Body, "ORD-1-ABCDEF")
	assert.Contains(t, sent[0].Body, "3.50")
}

func TestDispatcher_SkipsWithoutAddressOrQueue(t *testing.T) {
	q := &recordingQueue{}
	order := &model.Order{OrderCode: "ORD-1-ABCDEF"}

	NewDispatcher(q).SendOrderConfirmation(context.Background(), &model.Account{}, order)
	assert.Empty(t, q.sent())

	assert.NotPanics(t, func() {
		NewDispatcher(nil).SendOrderConfirmation(context.Background(), &model.Account{Email: "a@b.c"}, order)
		var d *Dispatcher
		d.SendOrderConfirmation(context.Background(), &model.Account{Email: "a@b.c"}, order)
	})
}
