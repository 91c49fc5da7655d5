package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"unlockmart/internal/model"
	"unlockmart/internal/mw"
	"unlockmart/internal/service"
)

type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Ledger    *service.Ledger
	Orders    *service.OrderService
	Placement *service.PlacementService
	Funding   *service.FundingService
	Admin     *service.AdminService
}

type RouterConfig struct {
	JWTSecret   string
	UploadDir   string
	ErrorDetail bool
}

func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(WithErrorDetail(cfg.ErrorDetail))

	// Public routes
	r.Post("/api/auth/register", RegisterHandler(svc.Auth, cfg.JWTSecret))
	r.Post("/api/auth/login", LoginHandler(svc.Auth, cfg.JWTSecret))
	r.Get("/api/services", ListServicesHandler(svc.Catalog))
	r.Get("/api/services/{id}", GetServiceHandler(svc.Catalog))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/orders", PlaceOrderHandler(svc.Placement))
		r.Get("/api/orders/my-orders", MyOrdersHandler(svc.Orders))
		r.Get("/api/orders/history", HistoryHandler(svc.Orders))
		r.Post("/api/orders/{id}/upload-document", UploadDocumentHandler(svc.Orders, cfg.UploadDir))

		r.Get("/api/balance", GetBalanceHandler(svc.Ledger))
		r.Post("/api/balance/fund", FundHandler(svc.Funding))

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(model.RoleAdministrator))

			r.Post("/api/admin/services", CreateServiceHandler(svc.Catalog))
			r.Patch("/api/admin/users/{id}/role", ChangeRoleHandler(svc.Admin))
			r.Patch("/api/admin/orders/{id}/status", ChangeOrderStatusHandler(svc.Orders))
		})
	})

	return r
}
