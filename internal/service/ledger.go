package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"unlockmart/internal/model"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ledger is the only writer of account balances.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) querier(q Querier) Querier {
	if q == nil {
		return l.db
	}
	return q
}

// Debit subtracts amount in a single conditional update, so two concurrent
// debits can never both pass the sufficiency check.
func (l *Ledger) Debit(ctx context.Context, q Querier, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() || !model.HasCents(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if uuid.Validate(accountID) != nil {
		return decimal.Zero, ErrAccountNotFound
	}
	q = l.querier(q)

	var cents int64
	err := q.QueryRowContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents - $1 WHERE id = $2 AND balance_cents >= $1 RETURNING balance_cents`,
		model.ToCents(amount), accountID,
	).Scan(&cents)
	if err == nil {
		return model.FromCents(cents), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("debit balance: %w", err)
	}

	var exists int
	err = q.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = $1`, accountID).Scan(&exists)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return decimal.Zero, ErrAccountNotFound
	case err != nil:
		return decimal.Zero, fmt.Errorf("check account: %w", err)
	}
	return decimal.Zero, ErrInsufficientFunds
}

func (l *Ledger) Credit(ctx context.Context, q Querier, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() || !model.HasCents(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if uuid.Validate(accountID) != nil {
		return decimal.Zero, ErrAccountNotFound
	}

	var cents int64
	err := l.querier(q).QueryRowContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + $1 WHERE id = $2 RETURNING balance_cents`,
		model.ToCents(amount), accountID,
	).Scan(&cents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	}
	return model.FromCents(cents), nil
}

func (l *Ledger) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if uuid.Validate(accountID) != nil {
		return decimal.Zero, ErrAccountNotFound
	}
	var cents int64
	err := l.db.QueryRowContext(ctx, `SELECT balance_cents FROM accounts WHERE id = $1`, accountID).Scan(&cents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return model.FromCents(cents), nil
}
