package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"unlockmart/internal/model"
)

type AdminService struct {
	db       *sql.DB
	registry *OperatorRegistry
}

func NewAdminService(db *sql.DB, registry *OperatorRegistry) *AdminService {
	return &AdminService{db: db, registry: registry}
}

// ChangeRole sets an account's role. Promoting to operator assigns an
// operator code when the account does not have one yet; demoting keeps the
// code, which then no longer resolves.
func (s *AdminService) ChangeRole(ctx context.Context, accountID string, role model.Role) (*model.Account, error) {
	if !role.Valid() {
		return nil, validationf("unknown role %q", role)
	}

	account, err := getAccount(ctx, s.db, accountID)
	if err != nil {
		return nil, err
	}

	if account.Role != role {
		_, err = s.db.ExecContext(ctx, `UPDATE accounts SET role = $1 WHERE id = $2`, string(role), accountID)
		if err != nil {
			return nil, fmt.Errorf("update role: %w", err)
		}
		slog.InfoContext(ctx, "account role changed", "account_id", accountID, "from", account.Role, "to", role)
		account.Role = role
	}

	if role == model.RoleOperator && account.OperatorCode == "" {
		code, err := s.registry.AssignCode(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("assign operator code: %w", err)
		}
		account.OperatorCode = code
	}

	return account, nil
}

func (s *AdminService) SetActive(ctx context.Context, accountID string, active bool) error {
	if _, err := getAccount(ctx, s.db, accountID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE accounts SET active = $1 WHERE id = $2`, active, accountID)
	if err != nil {
		return fmt.Errorf("update active: %w", err)
	}
	return nil
}
