package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"unlockmart/internal/model"
)

const accountColumns = `id, name, email, password_hash, role, operator_code, balance_cents, active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		a     model.Account
		code  sql.NullString
		cents int64
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &code, &cents, &a.Active, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.OperatorCode = code.String
	a.Balance = model.FromCents(cents)
	return &a, nil
}

func getAccount(ctx context.Context, q Querier, id string) (*model.Account, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrAccountNotFound
	}
	a, err := scanAccount(q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}
