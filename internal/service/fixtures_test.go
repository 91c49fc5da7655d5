package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"unlockmart/internal/database/dbtest"
	"unlockmart/internal/model"
)

const validIMEI = "490154203237518"

type env struct {
	db        *sql.DB
	auth      *AuthService
	catalog   *CatalogService
	ledger    *Ledger
	registry  *OperatorRegistry
	orders    *OrderService
	admin     *AdminService
	funding   *FundingService
	queue     *recordingQueue
	placement *PlacementService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)

	e := &env{db: db, queue: &recordingQueue{}}
	e.auth = NewAuthService(db)
	e.catalog = NewCatalogService(db)
	e.ledger = NewLedger(db)
	e.registry = NewOperatorRegistry(db)
	e.orders = NewOrderService(db, e.registry)
	e.admin = NewAdminService(db, e.registry)
	e.funding = NewFundingService(db, e.ledger, SimulatedGateway{})
	e.placement = NewPlacementService(db, e.catalog, e.ledger, e.orders, NewDispatcher(e.queue))
	return e
}

var accountSeq atomic.Int64

func (e *env) account(t *testing.T, balance string) *model.Account {
	t.Helper()
	n := accountSeq.Add(1)
	a, err := e.auth.Register(context.Background(), fmt.Sprintf("Jane Doe %d", n), fmt.Sprintf("jane%d@example.com", n), "secret")
	require.NoError(t, err)

	if amount := decimal.RequireFromString(balance); amount.IsPositive() {
		_, err = e.ledger.Credit(context.Background(), nil, a.ID, amount)
		require.NoError(t, err)
	}
	return a
}

func (e *env) operator(t *testing.T) *model.Account {
	t.Helper()
	a := e.account(t, "0")
	a, err := e.admin.ChangeRole(context.Background(), a.ID, model.RoleOperator)
	require.NoError(t, err)
	require.NotEmpty(t, a.OperatorCode)
	return a
}

func (e *env) service(t *testing.T, price string, category model.Category) *model.Service {
	t.Helper()
	svc, err := e.catalog.Create(context.Background(), model.Service{
		Name:         "Unlock " + string(category),
		Price:        decimal.RequireFromString(price),
		Category:     category,
		DeliveryTime: "1-3 days",
	})
	require.NoError(t, err)
	return svc
}

func (e *env) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	b, err := e.ledger.Balance(context.Background(), accountID)
	require.NoError(t, err)
	return b
}

func (e *env) orderCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n))
	return n
}

type recordingQueue struct {
	mu    sync.Mutex
	items []model.Notification
	full  bool
}

func (q *recordingQueue) Enqueue(n model.Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.items = append(q.items, n)
	return true
}

func (q *recordingQueue) sent() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.Notification(nil), q.items...)
}
