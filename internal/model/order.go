package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in_progress"
	StatusAssigned   OrderStatus = "assigned"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusAssigned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// adminTargets lists the statuses an administrator may set. Assigned is
// only ever set at creation. Any source state is accepted, so a completed
// order can be reopened.
var adminTargets = map[OrderStatus]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

func CanTransition(from, to OrderStatus) bool {
	return from.Valid() && adminTargets[to]
}

type Order struct {
	ID           string            `json:"_id"`
	OrderCode    string            `json:"orderCode"`
	AccountID    string            `json:"user"`
	ServiceID    string            `json:"serviceId"`
	ServiceName  string            `json:"serviceName"`
	Price        decimal.Decimal   `json:"price"`
	Fields       map[string]string `json:"fields"`
	Status       OrderStatus       `json:"status"`
	OperatorCode string            `json:"employeeCode,omitempty"`
	OperatorID   string            `json:"assignedEmployee,omitempty"`
	Documents    []string          `json:"documents"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`

	Service *Service `json:"service,omitempty"`
}
