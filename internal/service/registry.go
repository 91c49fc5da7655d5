package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"

	"unlockmart/internal/database"
	"unlockmart/internal/model"
)

const (
	maxSuffixAttempts = 1000
	maxAssignAttempts = 10
)

// OperatorRegistry hands out operator codes and resolves them back to
// operator accounts. The UNIQUE constraint on accounts.operator_code is the
// final word on uniqueness; the existence checks only keep collisions rare.
type OperatorRegistry struct {
	db          *sql.DB
	intN        func(n int) int
	maxAttempts int
}

func NewOperatorRegistry(db *sql.DB) *OperatorRegistry {
	return &OperatorRegistry{
		db:          db,
		intN:        rand.IntN,
		maxAttempts: maxSuffixAttempts,
	}
}

func baseCode(name, email, number string) string {
	var b strings.Builder
	letters := 0
	for _, r := range name {
		if letters == 3 {
			break
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteRune(unicode.ToUpper(r))
			letters++
		}
	}

	local, _, _ := strings.Cut(email, "@")
	if runes := []rune(local); len(runes) > 2 {
		local = string(runes[:2])
	}
	b.WriteString(strings.ToUpper(local))
	b.WriteString(number)
	return b.String()
}

func (r *OperatorRegistry) codeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE operator_code = $1`, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check operator code: %w", err)
	}
	return true, nil
}

// GenerateCode returns a code that no account held at the time of the check.
func (r *OperatorRegistry) GenerateCode(ctx context.Context, name, email string) (string, error) {
	base := baseCode(name, email, strconv.Itoa(1000+r.intN(9000)))

	taken, err := r.codeExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= r.maxAttempts; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		taken, err := r.codeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// AssignCode gives the account an operator code unless it already has one,
// and returns the code it ends up with.
func (r *OperatorRegistry) AssignCode(ctx context.Context, accountID string) (string, error) {
	account, err := getAccount(ctx, r.db, accountID)
	if err != nil {
		return "", err
	}
	if account.OperatorCode != "" {
		return account.OperatorCode, nil
	}

	for attempt := 1; attempt <= maxAssignAttempts; attempt++ {
		code, err := r.GenerateCode(ctx, account.Name, account.Email)
		if err != nil {
			return "", err
		}

		res, err := r.db.ExecContext(ctx,
			`UPDATE accounts SET operator_code = $1 WHERE id = $2 AND operator_code IS NULL`,
			code, accountID,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				slog.WarnContext(ctx, "operator code taken concurrently, retrying", "code", code, "attempt", attempt)
				continue
			}
			return "", fmt.Errorf("store operator code: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("store operator code: %w", err)
		}
		if n == 0 {
			// Someone else assigned a code first.
			account, err = getAccount(ctx, r.db, accountID)
			if err != nil {
				return "", err
			}
			return account.OperatorCode, nil
		}

		slog.InfoContext(ctx, "operator code assigned", "account_id", accountID, "code", code)
		return code, nil
	}
	return "", ErrCodeGenerationExhausted
}

// LookupByCode resolves a code to an active operator account.
func (r *OperatorRegistry) LookupByCode(ctx context.Context, q Querier, code string) (*model.Account, error) {
	if q == nil {
		q = r.db
	}
	account, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE operator_code = $1`, code,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidOperatorCode
		}
		return nil, fmt.Errorf("lookup operator code: %w", err)
	}
	if account.Role != model.RoleOperator || !account.Active {
		return nil, ErrInvalidOperatorCode
	}
	return account, nil
}
