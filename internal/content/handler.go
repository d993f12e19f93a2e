package content

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/almanar-edu/almanar/internal/platform/httpx"
)

const maxImageBytes = 8 << 20

// Handler exposes landing content endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers the unauthenticated landing endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/landing", h.handleLanding)
}

// MountAdminRoutes registers the authenticated editor endpoints.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.handleListAll)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Post("/{id}/image", h.handleUploadImage)
}

func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.Landing(r.Context())
	if err != nil {
		h.logger.Error("load landing sections", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if sections == nil {
		sections = []Section{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sections": sections})
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.ListAll(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if sections == nil {
		sections = []Section{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sections": sections})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid section id")
		return
	}
	section, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, section)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	section, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create section", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, section)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid section id")
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	section, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, section)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid section id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid section id")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Image upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()
	key, err := h.service.UploadImage(r.Context(), id, file, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, ErrUnsupportedImageType) {
			httpx.Error(w, http.StatusBadRequest, "Image must be a JPEG, PNG or WebP file")
			return
		}
		h.logger.Error("upload section image", slog.Int64("section_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"image_key": key})
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (SectionInput, bool) {
	var input SectionInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "A lowercase key and a title are required")
		return input, false
	}
	return input, true
}
