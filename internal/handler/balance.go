package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"unlockmart/internal/model"
	"unlockmart/internal/mw"
	"unlockmart/internal/service"
)

type balanceResponse struct {
	Balance json.Number `json:"balance"`
}

type fundRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethodID string          `json:"paymentMethodId"`
}

type fundResponse struct {
	Funding    *model.Funding `json:"funding"`
	NewBalance json.Number    `json:"newBalance"`
}

func GetBalanceHandler(ledger *service.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		balance, err := ledger.Balance(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, balanceResponse{Balance: json.Number(balance.StringFixed(2))})
	}
}

func FundHandler(fundingSvc *service.FundingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req fundRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		funding, balance, err := fundingSvc.Fund(r.Context(), userID, req.Amount, req.PaymentMethodID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, fundResponse{Funding: funding, NewBalance: json.Number(balance.StringFixed(2))})
	}
}
