package fees

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/almanar-edu/almanar/internal/platform/httpx"
	"github.com/almanar-edu/almanar/internal/shared"
)

// Handler exposes fee schedule and payment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers fee routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/schedules", h.handleListSchedules)
	r.Put("/schedules", h.handleUpsertSchedule)
	r.Post("/payments", h.handleRecordPayment)
	r.Get("/payments/{receiptNo}/receipt", h.handleReceipt)
	r.Get("/students/{id}/payments", h.handleStudentPayments)
	r.Get("/students/{id}/outstanding", h.handleOutstanding)
}

func (h *Handler) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.service.ListSchedules(r.Context())
	if err != nil {
		h.logger.Error("list fee schedules", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if schedules == nil {
		schedules = []Schedule{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"schedules": schedules})
}

func (h *Handler) handleUpsertSchedule(w http.ResponseWriter, r *http.Request) {
	var input ScheduleInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Class name and a positive monthly amount are required")
		return
	}
	schedule, err := h.service.UpsertSchedule(r.Context(), actorID(r), input)
	if err != nil {
		h.logger.Error("upsert fee schedule", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var input PaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Student, month, amount and method are required")
		return
	}
	payment, err := h.service.RecordPayment(r.Context(), actorID(r), r.Header.Get("Idempotency-Key"), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMonth):
			httpx.Error(w, http.StatusBadRequest, "Month must use the YYYY-MM format")
		case errors.Is(err, shared.ErrIdempotencyConflict):
			httpx.Error(w, http.StatusConflict, "This payment was already submitted")
		case errors.Is(err, shared.ErrDuplicate):
			httpx.Error(w, http.StatusConflict, "A payment for this student and month already exists")
		case errors.Is(err, shared.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "Student not found")
		default:
			h.logger.Error("record payment", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.ReceiptFor(r.Context(), chi.URLParam(r, "receiptNo"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleStudentPayments(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}
	payments, err := h.service.PaymentsForStudent(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if payments == nil {
		payments = []Payment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	report, err := h.service.Outstanding(r.Context(), id, from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidMonth) {
			httpx.Error(w, http.StatusBadRequest, "from and to must use the YYYY-MM format")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func actorID(r *http.Request) uuid.UUID {
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		return id.UserID
	}
	return uuid.Nil
}
