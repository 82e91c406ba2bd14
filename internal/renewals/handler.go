package renewals

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greenshield-crm/greenshield-crm/internal/platform/httpx"
)

// Handler manages renewal schedule endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers renewal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/renewals", h.list)
	r.Get("/renewals/summary", h.summary)
	r.Get("/renewals/{id}", h.show)
	r.Post("/renewals/{id}/complete", h.complete)
	r.Post("/renewals/{id}/recompute", h.recomputeOne)
	r.Post("/renewals/recompute", h.recompute)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListRenewalsRequest{Limit: 50}
	q := r.URL.Query()
	if v, err := strconv.ParseInt(q.Get("jobcard_id"), 10, 64); err == nil {
		req.JobCardID = &v
	}
	if v := q.Get("status"); v != "" {
		status := RenewalStatus(v)
		req.Status = &status
	}
	if v := q.Get("kind"); v != "" {
		kind := RenewalKind(v)
		req.Kind = &kind
	}
	if v := q.Get("urgency"); v != "" {
		tier := UrgencyTier(v)
		req.Urgency = &tier
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 500 {
		req.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		req.Offset = v
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list renewals failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListRenewalsResponse{Renewals: list, Total: total, Limit: req.Limit, Offset: req.Offset})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	includePaused := r.URL.Query().Get("include_paused") == "true"
	summary, err := h.service.UpcomingSummary(r.Context(), includePaused)
	if err != nil {
		h.logger.Error("renewal summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "renewal id must be an integer")
		return
	}
	renewal, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, renewal)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "renewal id must be an integer")
		return
	}
	renewal, err := h.service.MarkCompleted(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, renewal)
}

func (h *Handler) recomputeOne(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "renewal id must be an integer")
		return
	}
	renewal, err := h.service.RecomputeOne(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, renewal)
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	changed, err := h.service.RecomputeAllDue(r.Context())
	if err != nil {
		h.logger.Error("recompute renewals failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RecomputeResponse{Changed: changed})
}
