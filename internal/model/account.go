package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer      Role = "customer"
	RoleAdministrator Role = "administrator"
	RoleOperator      Role = "operator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdministrator, RoleOperator:
		return true
	}
	return false
}

type Account struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash []byte          `json:"-"`
	Role         Role            `json:"role"`
	OperatorCode string          `json:"operatorCode,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"createdAt"`
}
