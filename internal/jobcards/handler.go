package jobcards

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/greenshield-crm/greenshield-crm/internal/platform/httpx"
)

// RenewalScheduler regenerates the renewal schedule after job mutations.
// Implemented by the renewals service; a scheduling failure is reported but
// never rolls back the job card mutation that triggered it.
type RenewalScheduler interface {
	ScheduleForJob(ctx context.Context, job JobCard, force bool) error
}

// Handler manages job card endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	scheduler RenewalScheduler
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, scheduler RenewalScheduler) *Handler {
	return &Handler{logger: logger, service: service, scheduler: scheduler, validator: validator.New()}
}

// MountRoutes registers job card routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/jobcards", h.list)
	r.Post("/jobcards", h.create)
	r.Get("/jobcards/statistics", h.statistics)
	r.Get("/jobcards/{id}", h.show)
	r.Patch("/jobcards/{id}", h.update)
	r.Post("/jobcards/{id}/pause", h.pause)
	r.Post("/jobcards/{id}/resume", h.resume)
	r.Post("/jobcards/{id}/payment", h.payment)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobCardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	job, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create job card failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	if err := h.scheduler.ScheduleForJob(r.Context(), *job, false); err != nil {
		// The job card stands even when generation fails; the schedule is
		// rebuilt once the missing fields are fixed.
		h.logger.Warn("renewal generation failed",
			slog.String("code", job.Code), slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusCreated, job)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateJobCardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	job, scheduleChanged, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if scheduleChanged {
		if err := h.scheduler.ScheduleForJob(r.Context(), *job, true); err != nil {
			h.logger.Warn("renewal regeneration failed",
				slog.String("code", job.Code), slog.Any("error", err))
		}
	}

	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	job, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListJobCardsRequest{
		Status:        JobStatus(r.URL.Query().Get("status")),
		PaymentStatus: PaymentStatus(r.URL.Query().Get("payment_status")),
		Kind:          JobKind(r.URL.Query().Get("kind")),
		Limit:         50,
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("client_id"), 10, 64); err == nil {
		req.ClientID = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		req.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		req.Offset = v
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list job cards failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"job_cards": list, "total": total})
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true)
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, false)
}

func (h *Handler) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.SetPaused(r.Context(), id, paused); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "is_paused": paused})
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status PaymentStatus `json:"status" validate:"required,oneof=Unpaid Paid"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	job, err := h.service.UpdatePaymentStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.logger.Error("job card statistics failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "job card id must be an integer")
		return 0, false
	}
	return id, true
}
