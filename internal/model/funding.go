package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Funding struct {
	ID                string          `json:"_id"`
	AccountID         string          `json:"user"`
	Amount            decimal.Decimal `json:"amount"`
	Provider          string          `json:"provider"`
	ProviderPaymentID string          `json:"providerPaymentId"`
	CreatedAt         time.Time       `json:"createdAt"`
}
