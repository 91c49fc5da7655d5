package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"unlockmart/internal/model"
	"unlockmart/internal/service"
)

func ListServicesHandler(catalogSvc *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := catalogSvc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if services == nil {
			services = []model.Service{}
		}
		writeJSON(w, http.StatusOK, services)
	}
}

func GetServiceHandler(catalogSvc *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := catalogSvc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	}
}

func CreateServiceHandler(catalogSvc *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.Service
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		svc, err := catalogSvc.Create(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, svc)
	}
}
