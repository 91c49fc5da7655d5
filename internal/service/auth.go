package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"unlockmart/internal/database"
	"unlockmart/internal/model"
)

type AuthService struct {
	db *sql.DB
}

func NewAuthService(db *sql.DB) *AuthService {
	return &AuthService{db: db}
}

// Register creates a customer account with a zero balance.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, validationf("name, email and password required")
	}
	if !strings.Contains(email, "@") {
		return nil, validationf("invalid email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := model.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, email, password_hash, role, balance_cents, active, created_at) VALUES ($1, $2, $3, $4, $5, 0, $6, $7)`,
		account.ID, account.Name, account.Email, account.PasswordHash, string(account.Role), account.Active, account.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return &account, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := scanAccount(s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	if !account.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

func (s *AuthService) Get(ctx context.Context, id string) (*model.Account, error) {
	return getAccount(ctx, s.db, id)
}
