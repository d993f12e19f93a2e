package students

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

// maxPhotoBytes caps student photo uploads at 5 MiB.
const maxPhotoBytes = 5 << 20

// Handler exposes student management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountReadRoutes registers the read-only student routes.
func (h *Handler) MountReadRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
}

// MountWriteRoutes registers the mutating student routes.
func (h *Handler) MountWriteRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Post("/{id}/photo", h.handleUploadPhoto)
}

type listResponse struct {
	Students   []Student         `json:"students"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, page, err := h.service.List(r.Context(), httpx.PageParams(r))
	if err != nil {
		h.logger.Error("list students", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Student{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Students: list, Pagination: page})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}
	student, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	student, err := h.service.Create(r.Context(), actorID(r), input)
	if err != nil {
		h.logger.Error("create student", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, student)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	student, err := h.service.Update(r.Context(), actorID(r), id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid student id")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Photo upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Photo file is required")
		return
	}
	defer file.Close()
	key, err := h.service.UploadPhoto(r.Context(), id, file, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, ErrUnsupportedPhotoType) {
			httpx.Error(w, http.StatusBadRequest, "Photo must be a JPEG, PNG or WebP image")
			return
		}
		h.logger.Error("upload student photo", slog.Int64("student_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"photo_key": key})
}

func actorID(r *http.Request) uuid.UUID {
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		return id.UserID
	}
	return uuid.Nil
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (StudentInput, bool) {
	var input StudentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Admission number, full name and class are required")
		return input, false
	}
	return input, true
}
