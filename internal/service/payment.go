package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"
)

const (
	ProviderSimulated   = "simulated"
	ProviderMercadoPago = "mercadopago"
)

var ErrPaymentDeclined = errors.New("payment declined")

type PaymentRequest struct {
	AccountID       string
	Email           string
	Amount          decimal.Decimal
	PaymentMethodID string
}

type PaymentResult struct {
	Provider          string
	ProviderPaymentID string
	Status            string
}

type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// SimulatedGateway approves every charge.
type SimulatedGateway struct{}

func (SimulatedGateway) Charge(_ context.Context, req PaymentRequest) (*PaymentResult, error) {
	return &PaymentResult{
		Provider:          ProviderSimulated,
		ProviderPaymentID: "sim-" + uuid.NewString(),
		Status:            "approved",
	}, nil
}

type MercadoPagoGateway struct {
	client payment.Client
}

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	}
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPagoGateway{client: payment.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	amount, _ := req.Amount.Float64()
	payload, err := json.Marshal(map[string]any{
		"transaction_amount": amount,
		"payment_method_id":  req.PaymentMethodID,
		"description":        "Balance top-up",
		"external_reference": req.AccountID,
		"payer":              map[string]any{"email": req.Email},
	})
	if err != nil {
		return nil, fmt.Errorf("encode payment: %w", err)
	}

	var mpReq payment.Request
	if err := json.Unmarshal(payload, &mpReq); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}

	start := time.Now()
	resp, err := g.client.Create(ctx, mpReq)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create: %w", err)
	}
	slog.InfoContext(ctx, "mercadopago payment created",
		"provider_payment_id", resp.ID, "status", resp.Status, "took", time.Since(start))

	result := &PaymentResult{
		Provider:          ProviderMercadoPago,
		ProviderPaymentID: strconv.FormatInt(int64(resp.ID), 10),
		Status:            resp.Status,
	}
	if resp.Status != "approved" {
		return result, fmt.Errorf("%w: status %s", ErrPaymentDeclined, resp.Status)
	}
	return result, nil
}
