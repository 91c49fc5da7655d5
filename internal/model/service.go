package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryIMEI     Category = "imei"
	CategoryServer   Category = "server"
	CategoryRemote   Category = "remote"
	CategoryFile     Category = "file"
	CategoryOfficial Category = "official"
)

// EligibilityCategory is the only category whose orders accept an operator code.
const EligibilityCategory = CategoryOfficial

var categoryFields = map[Category][]string{
	CategoryIMEI:     {"imei"},
	CategoryServer:   {"imei"},
	CategoryOfficial: {"imei"},
	CategoryRemote:   nil,
	CategoryFile:     nil,
}

func (c Category) Valid() bool {
	_, ok := categoryFields[c]
	return ok
}

type Service struct {
	ID             string          `json:"_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Category       Category        `json:"type"`
	DeliveryTime   string          `json:"deliveryTime"`
	RequiredFields []string        `json:"requiredFields"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// FieldsToCheck returns the category baseline fields followed by the
// service-specific ones, without duplicates.
func (s *Service) FieldsToCheck() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range [][]string{categoryFields[s.Category], s.RequiredFields} {
		for _, f := range group {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}
