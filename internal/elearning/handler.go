package elearning

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/almanar-edu/almanar/internal/platform/httpx"
)

// Handler exposes video lesson endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers lesson routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handlePlaylist)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		httpx.Error(w, http.StatusBadRequest, "subject query parameter is required")
		return
	}
	lessons, err := h.service.Playlist(r.Context(), subject)
	if err != nil {
		h.logger.Error("list lessons", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if lessons == nil {
		lessons = []Lesson{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lessons": lessons})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid lesson id")
		return
	}
	lesson, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lesson)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	lesson, err := h.service.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, ErrUnsupportedVideo) {
			httpx.Error(w, http.StatusBadRequest, "Video URL must be a YouTube, Vimeo or direct MP4 link")
			return
		}
		h.logger.Error("create lesson", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lesson)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid lesson id")
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	lesson, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, ErrUnsupportedVideo) {
			httpx.Error(w, http.StatusBadRequest, "Video URL must be a YouTube, Vimeo or direct MP4 link")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lesson)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid lesson id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (LessonInput, bool) {
	var input LessonInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return input, false
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Title, subject and a valid video URL are required")
		return input, false
	}
	return input, true
}
