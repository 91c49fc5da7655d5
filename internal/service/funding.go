package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"unlockmart/internal/model"
)

// FundingService tops up balances: charge the gateway, then credit the
// ledger and record the funding in one transaction.
type FundingService struct {
	db      *sql.DB
	ledger  *Ledger
	gateway PaymentGateway
}

func NewFundingService(db *sql.DB, ledger *Ledger, gateway PaymentGateway) *FundingService {
	return &FundingService{db: db, ledger: ledger, gateway: gateway}
}

func (s *FundingService) Fund(ctx context.Context, accountID string, amount decimal.Decimal, paymentMethodID string) (*model.Funding, decimal.Decimal, error) {
	if !amount.IsPositive() || !model.HasCents(amount) {
		return nil, decimal.Zero, ErrInvalidAmount
	}

	account, err := getAccount(ctx, s.db, accountID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	res, err := s.gateway.Charge(ctx, PaymentRequest{
		AccountID:       account.ID,
		Email:           account.Email,
		Amount:          amount,
		PaymentMethodID: paymentMethodID,
	})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("charge: %w", err)
	}

	funding, balance, err := s.Record(ctx, account.ID, amount, res.Provider, res.ProviderPaymentID)
	if err != nil {
		slog.ErrorContext(ctx, "payment charged but credit failed",
			"account_id", account.ID, "provider", res.Provider, "provider_payment_id", res.ProviderPaymentID, "error", err)
		return nil, decimal.Zero, err
	}
	return funding, balance, nil
}

// Record credits an amount that was collected elsewhere (a gateway charge,
// or a manual top-up by an administrator).
func (s *FundingService) Record(ctx context.Context, accountID string, amount decimal.Decimal, provider, providerPaymentID string) (*model.Funding, decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	balance, err := s.ledger.Credit(ctx, tx, accountID, amount)
	if err != nil {
		return nil, decimal.Zero, err
	}

	f := model.Funding{
		ID:                uuid.NewString(),
		AccountID:         accountID,
		Amount:            amount,
		Provider:          provider,
		ProviderPaymentID: providerPaymentID,
		CreatedAt:         time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO fundings (id, account_id, amount_cents, provider, provider_payment_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.AccountID, model.ToCents(f.Amount), f.Provider, f.ProviderPaymentID, f.CreatedAt,
	)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("insert funding: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("commit tx: %w", err)
	}

	slog.InfoContext(ctx, "balance funded", "account_id", accountID, "amount", amount.StringFixed(2), "provider", provider)
	return &f, balance, nil
}
