package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockmart/internal/model"
)

func TestNewOrderCode_Format(t *testing.T) {
	at := time.UnixMilli(1760000000123)
	code, err := newOrderCode(at)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-1760000000123-[0-9A-F]{6}$`), code)
}

func TestOrderService_Create_InProgressWithoutCode(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "0")
	svc := e.service(t, "12.00", model.CategoryRemote)

	o, err := e.orders.Create(context.Background(), nil, a, svc, map[string]string{"note": "hi"}, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, o.Status)
	assert.Empty(t, o.OperatorID)

	got, err := e.orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderCode, got.OrderCode)
	assert.Equal(t, "hi", got.Fields["note"])
	assert.Equal(t, "12.00", got.Price.StringFixed(2))
	assert.Empty(t, got.Documents)
}

func TestOrderService_Create_AssignedWithOperator(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "0")
	op := e.operator(t)
	svc := e.service(t, "40.00", model.CategoryOfficial)

	o, err := e.orders.Create(context.Background(), nil, a, svc, map[string]string{"imei": validIMEI}, op.OperatorCode)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, o.Status)
	assert.Equal(t, op.ID, o.OperatorID)
	assert.Equal(t, op.OperatorCode, o.OperatorCode)
}

func TestOrderService_Create_Rejections(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "0")
	op := e.operator(t)
	official := e.service(t, "40.00", model.CategoryOfficial)
	remote := e.service(t, "5.00", model.CategoryRemote)

	_, err := e.orders.Create(context.Background(), nil, a, nil, nil, "")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = e.orders.Create(context.Background(), nil, a, remote, nil, op.OperatorCode)
	assert.ErrorIs(t, err, ErrOperatorCodeNotApplicable)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.orders.Create(context.Background(), nil, a, official, nil, "BOGUS1000")
	assert.ErrorIs(t, err, ErrInvalidOperatorCode)

	assert.Zero(t, e.orderCount(t))
}

func TestOrderService_PriceSnapshotSurvivesCatalogEdit(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "0")
	svc := e.service(t, "9.99", model.CategoryFile)

	o, err := e.orders.Create(context.Background(), nil, a, svc, nil, "")
	require.NoError(t, err)

	_, err = e.db.Exec(`UPDATE services SET price_cents = 50000, name = 'Renamed' WHERE id = $1`, svc.ID)
	require.NoError(t, err)

	history, err := e.orders.History(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, o.ID, history[0].ID)
	assert.Equal(t, "9.99", history[0].Price.StringFixed(2))
	assert.Equal(t, svc.Name, history[0].ServiceName)
	require.NotNil(t, history[0].Service)
	assert.Equal(t, "Renamed", history[0].Service.Name)
	assert.True(t, history[0].Service.Price.Equal(decimal.NewFromInt(500)))
}

func TestOrderService_DuplicateOrderCodeFailsInsert(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "0")
	svc := e.service(t, "1.00", model.CategoryFile)
	e.orders.newCode = func(time.Time) (string, error) { return "ORD-1-AAAAAA", nil }

	_, err := e.orders.Create(context.Background(), nil, a, svc, nil, "")
	require.NoError(t, err)
	_, err = e.orders.Create(context.Background(), nil, a, svc, nil, "")
	require.Error(t, err)
}

func TestOrderService_Transition(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "0")
	svc := e.service(t, "1.00", model.CategoryFile)
	o, err := e.orders.Create(context.Background(), nil, a, svc, nil, "")
	require.NoError(t, err)

	for _, to := range []model.OrderStatus{model.StatusCompleted, model.StatusInProgress, model.StatusCancelled, model.StatusPending} {
		got, err := e.orders.Transition(context.Background(), o.ID, to)
		require.NoError(t, err)
		assert.Equal(t, to, got.Status)
	}

	_, err = e.orders.Transition(context.Background(), o.ID, model.StatusAssigned)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.orders.Transition(context.Background(), o.ID, model.OrderStatus("lost"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.orders.Transition(context.Background(), "missing", model.StatusPending)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := e.orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestOrderService_AttachDocument(t *testing.T) {
	e := newEnv(t)
	owner := e.account(t, "0")
	other := e.account(t, "0")
	svc := e.service(t, "1.00", model.CategoryFile)
	o, err := e.orders.Create(context.Background(), nil, owner, svc, nil, "")
	require.NoError(t, err)

	_, err = e.orders.AttachDocument(context.Background(), owner.ID, o.ID, "uploads/a.pdf")
	require.NoError(t, err)
	got, err := e.orders.AttachDocument(context.Background(), owner.ID, o.ID, "uploads/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/a.pdf", "uploads/b.pdf"}, got.Documents)

	_, err = e.orders.AttachDocument(context.Background(), other.ID, o.ID, "uploads/c.pdf")
	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestOrderService_ListByAccountIsStable(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "0")
	svc := e.service(t, "1.00", model.CategoryFile)
	for i := 0; i < 3; i++ {
		_, err := e.orders.Create(context.Background(), nil, a, svc, nil, "")
		require.NoError(t, err)
	}

	first, err := e.orders.ListByAccount(context.Background(), a.ID)
	require.NoError(t, err)
	second, err := e.orders.ListByAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, e.orderCount(t))
}
