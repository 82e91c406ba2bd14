package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/greenshield-crm/greenshield-crm/internal/clients"
	"github.com/greenshield-crm/greenshield-crm/internal/dashboard"
	"github.com/greenshield-crm/greenshield-crm/internal/inquiries"
	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/renewals"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ClientHandler    *clients.Handler
	InquiryHandler   *inquiries.Handler
	JobCardHandler   *jobcards.Handler
	RenewalHandler   *renewals.Handler
	DashboardHandler *dashboard.Handler
}

// NewRouter constructs the chi.Router with GreenShield defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.ClientHandler.MountRoutes(r)
		params.InquiryHandler.MountRoutes(r)
		params.JobCardHandler.MountRoutes(r)
		params.RenewalHandler.MountRoutes(r)
		params.DashboardHandler.MountRoutes(r)
	})

	return r
}
