package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"unlockmart/internal/model"
	"unlockmart/internal/mw"
	"unlockmart/internal/service"
)

const maxDocumentSize = 10 << 20

type placeOrderRequest struct {
	ServiceID    string            `json:"serviceId"`
	Fields       map[string]string `json:"fields"`
	EmployeeCode string            `json:"employeeCode"`
}

type placedOrder struct {
	ID        string    `json:"_id"`
	OrderCode string    `json:"orderCode"`
	CreatedAt time.Time `json:"createdAt"`
}

type placeOrderResponse struct {
	Message    string      `json:"message"`
	Order      placedOrder `json:"order"`
	NewBalance json.Number `json:"newBalance"`
}

type serviceDetails struct {
	ID    string          `json:"_id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type myOrder struct {
	OrderCode      string            `json:"orderCode"`
	ServiceDetails serviceDetails    `json:"serviceDetails"`
	Status         model.OrderStatus `json:"status"`
	Fields         map[string]string `json:"fields"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func PlaceOrderHandler(placementSvc *service.PlacementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req placeOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.ServiceID) == "" {
			writeMessage(w, http.StatusBadRequest, "serviceId is required")
			return
		}

		p, err := placementSvc.PlaceOrder(r.Context(), userID, req.ServiceID, req.Fields, req.EmployeeCode)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, placeOrderResponse{
			Message: "order placed",
			Order: placedOrder{
				ID:        p.OrderID,
				OrderCode: p.OrderCode,
				CreatedAt: p.CreatedAt,
			},
			NewBalance: json.Number(p.NewBalance.StringFixed(2)),
		})
	}
}

func MyOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := orderSvc.ListByAccount(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]myOrder, 0, len(orders))
		for _, o := range orders {
			out = append(out, myOrder{
				OrderCode: o.OrderCode,
				ServiceDetails: serviceDetails{
					ID:    o.ServiceID,
					Name:  o.ServiceName,
					Price: o.Price,
				},
				Status:    o.Status,
				Fields:    o.Fields,
				CreatedAt: o.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func HistoryHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := orderSvc.History(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if orders == nil {
			orders = []model.Order{}
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

// UploadDocumentHandler stores the multipart "document" file under uploadDir
// and appends its path to the caller's order.
func UploadDocumentHandler(orderSvc *service.OrderService, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		orderID := chi.URLParam(r, "id")

		order, err := orderSvc.Get(r.Context(), orderID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if order.AccountID != userID {
			writeError(w, r, service.ErrNotOrderOwner)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)
		file, header, err := r.FormFile("document")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "document file is required")
			return
		}
		defer file.Close()

		path, err := saveDocument(uploadDir, header.Filename, file)
		if err != nil {
			writeError(w, r, err)
			return
		}

		order, err = orderSvc.AttachDocument(r.Context(), userID, orderID, path)
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil {
				slog.WarnContext(r.Context(), "remove orphaned document", "path", path, "error", rmErr)
			}
			writeError(w, r, err)
			return
		}

		slog.InfoContext(r.Context(), "document uploaded", "order_code", order.OrderCode, "path", path)
		writeJSON(w, http.StatusOK, order)
	}
}

func saveDocument(dir, name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close document: %w", err)
	}
	return path, nil
}
