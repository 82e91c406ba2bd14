package inquiries

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/greenshield-crm/greenshield-crm/internal/platform/httpx"
)

// Handler manages inquiry endpoints. Intake and reference lookup are
// public; everything else is back-office.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers inquiry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/inquiries", h.create)
	r.Get("/inquiries", h.list)
	r.Get("/inquiries/lookup/{reference}", h.lookup)
	r.Get("/inquiries/{id}", h.show)
	r.Post("/inquiries/{id}/status", h.updateStatus)
	r.Post("/inquiries/{id}/convert", h.convert)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInquiryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	inquiry, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create inquiry failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CreateInquiryResponse{
		Reference: inquiry.Reference,
		Status:    string(inquiry.Status),
	})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	inquiry, err := h.service.GetByReference(r.Context(), reference)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	// Public view: reference and status only.
	httpx.JSON(w, http.StatusOK, CreateInquiryResponse{
		Reference: inquiry.Reference,
		Status:    string(inquiry.Status),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inquiry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inquiry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListInquiriesRequest{
		Status: InquiryStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
		Search: r.URL.Query().Get("search"),
		Limit:  50,
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		req.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		req.Offset = v
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list inquiries failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"inquiries": list, "total": total})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status InquiryStatus `json:"status" validate:"required"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	inquiry, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inquiry)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req ConvertInquiryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	job, err := h.service.ConvertToJobCard(r.Context(), id, req)
	if err != nil {
		h.logger.Error("convert inquiry failed", slog.Int64("inquiry_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, job)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "inquiry id must be an integer")
		return 0, false
	}
	return id, true
}
