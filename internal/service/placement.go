package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"unlockmart/internal/model"
)

// Placement is what a successful order returns to the customer. It carries
// nothing beyond the new order's identity and the caller's own balance.
type Placement struct {
	OrderID    string
	OrderCode  string
	CreatedAt  time.Time
	NewBalance decimal.Decimal
}

type PlacementService struct {
	db       *sql.DB
	catalog  *CatalogService
	ledger   *Ledger
	orders   *OrderService
	notifier *Dispatcher
}

func NewPlacementService(db *sql.DB, catalog *CatalogService, ledger *Ledger, orders *OrderService, notifier *Dispatcher) *PlacementService {
	return &PlacementService{
		db:       db,
		catalog:  catalog,
		ledger:   ledger,
		orders:   orders,
		notifier: notifier,
	}
}

// PlaceOrder debits the account and creates the order in one transaction.
// Every failure before the commit leaves the balance untouched.
func (s *PlacementService) PlaceOrder(ctx context.Context, accountID, serviceID string, fields map[string]string, operatorCode string) (*Placement, error) {
	operatorCode = strings.TrimSpace(operatorCode)

	account, err := getAccount(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, ErrAccountNotFound
	}

	svc, err := s.catalog.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	fields, err = checkFields(svc, fields)
	if err != nil {
		return nil, err
	}

	if operatorCode != "" && svc.Category != model.EligibilityCategory {
		return nil, ErrOperatorCodeNotApplicable
	}

	if account.Balance.LessThan(svc.Price) {
		return nil, ErrInsufficientFunds
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	newBalance, err := s.ledger.Debit(ctx, tx, account.ID, svc.Price)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Create(ctx, tx, account, svc, fields, operatorCode)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	slog.InfoContext(ctx, "order placed",
		"order_code", order.OrderCode,
		"account_id", account.ID,
		"service_id", svc.ID,
		"status", order.Status,
		"price", svc.Price.StringFixed(2),
	)

	account.Balance = newBalance
	s.notifier.SendOrderConfirmation(context.WithoutCancel(ctx), account, order)

	return &Placement{
		OrderID:    order.ID,
		OrderCode:  order.OrderCode,
		CreatedAt:  order.CreatedAt,
		NewBalance: newBalance,
	}, nil
}

// checkFields trims the submitted values and makes sure every field the
// service needs is present. An IMEI must be 15 digits and pass Luhn.
func checkFields(svc *model.Service, fields map[string]string) (map[string]string, error) {
	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		clean[k] = strings.TrimSpace(v)
	}

	for _, name := range svc.FieldsToCheck() {
		if clean[name] == "" {
			return nil, validationf("field %q is required", name)
		}
	}

	if imei, ok := clean["imei"]; ok && imei != "" && !validIMEI(imei) {
		return nil, validationf("invalid IMEI")
	}
	return clean, nil
}

func validIMEI(s string) bool {
	if len(s) != 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return validateLuhn(s)
}

func validateLuhn(s string) bool {
	if len(s) < 2 {
		return false
	}
	var sum int
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		digit := int(s[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}
