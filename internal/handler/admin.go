package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"unlockmart/internal/model"
	"unlockmart/internal/service"
)

type changeRoleRequest struct {
	Role model.Role `json:"role"`
}

type changeStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func ChangeRoleHandler(adminSvc *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changeRoleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		account, err := adminSvc.ChangeRole(r.Context(), chi.URLParam(r, "id"), req.Role)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func ChangeOrderStatusHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changeStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		order, err := orderSvc.Transition(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}
