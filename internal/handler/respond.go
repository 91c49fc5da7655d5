package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"unlockmart/internal/model"
	"unlockmart/internal/mw"
	"unlockmart/internal/service"
)

type detailCtxKey struct{}

// WithErrorDetail lets administrators see the underlying error chain in
// failure responses. Enable it outside production only.
func WithErrorDetail(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), detailCtxKey{}, enabled)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInvalidOperatorCode),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrPaymentDeclined):
		return http.StatusPaymentRequired, "payment declined"
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrNotOrderOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// writeError maps a service error to a status and a {message} body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	resp := errorResponse{Message: message}
	if detail, _ := r.Context().Value(detailCtxKey{}).(bool); detail && mw.RoleFrom(r.Context()) == model.RoleAdministrator {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
