package decks

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/platform/httpx"
	"github.com/lexora-app/lexora/internal/shared"
)

// Enqueuer hands large bulk operations to the background worker.
type Enqueuer interface {
	EnqueueDeckBulkArchive(ctx context.Context, userID int64, ids []int64) (string, error)
}

// Handler serves the deck JSON API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	enqueuer  Enqueuer
	validator *validator.Validate
}

// NewHandler builds Handler instance. The enqueuer is optional; without it
// bulk archives always run inline.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer, validator: validator.New()}
}

// MountRoutes registers deck routes. The identity middleware must already be
// installed on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.archive)
	r.Get("/{id}/cards", h.cards)
	r.Post("/bulk/archive", h.bulkArchive)
	r.Post("/cards/bulk/delete", h.bulkDeleteCards)
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (authz.Identity, bool) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return authz.Identity{}, false
	}
	return id, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	items, err := h.service.List(r.Context(), id, shared.NewPagination(page, perPage, 0))
	if err != nil {
		h.logger.Error("list decks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"decks": items})
}

type deckForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	CourseID    *int64 `json:"course_id" validate:"omitempty,gt=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form deckForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	d, err := h.service.Create(r.Context(), id, form.Title, form.Description, form.CourseID)
	if err != nil {
		h.logger.Error("create deck", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	deckID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "deck id must be numeric")
		return
	}
	d, err := h.service.Get(r.Context(), id, deckID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	deckID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "deck id must be numeric")
		return
	}
	var form deckForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	d, err := h.service.Update(r.Context(), id, deckID, form.Title, form.Description)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	deckID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "deck id must be numeric")
		return
	}
	if err := h.service.Archive(r.Context(), id, deckID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cards(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	deckID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "deck id must be numeric")
		return
	}
	cards, err := h.service.Cards(r.Context(), id, deckID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cards": cards})
}

type bulkForm struct {
	IDs []int64 `json:"ids" validate:"required,min=1,max=1000,dive,gt=0"`
}

func (h *Handler) bulkArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form bulkForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	if h.enqueuer != nil && r.URL.Query().Get("async") == "1" {
		jobID, err := h.enqueuer.EnqueueDeckBulkArchive(r.Context(), id.ID, form.IDs)
		if err != nil {
			h.logger.Error("enqueue bulk archive", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"job_id": jobID})
		return
	}
	outcome, err := h.service.BulkArchive(r.Context(), id, form.IDs)
	if err != nil {
		h.logger.Error("bulk archive decks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if !outcome.Done() {
		status = http.StatusMultiStatus
	}
	httpx.JSON(w, status, outcome)
}

func (h *Handler) bulkDeleteCards(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form bulkForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	outcome, err := h.service.BulkDeleteCards(r.Context(), id, form.IDs)
	if err != nil {
		h.logger.Error("bulk delete cards", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if !outcome.Done() {
		status = http.StatusMultiStatus
	}
	httpx.JSON(w, status, outcome)
}
