package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/platform/httpx"
	"github.com/lexora-app/lexora/internal/shared"
)

// Handler serves the role-administration JSON API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/roles", h.listRoles)
	r.Post("/roles", h.createRole)
	r.Get("/roles/{id}", h.showRole)
	r.Delete("/roles/{id}", h.deleteRole)
	r.Post("/roles/{id}/grants", h.addGrant)
	r.Delete("/grants/{id}", h.removeGrant)
	r.Post("/assignments", h.assign)
	r.Delete("/assignments", h.unassign)
	r.Post("/memberships", h.addMembership)
	r.Delete("/memberships", h.removeMembership)
	r.Post("/stewardships", h.addStewardship)
	r.Delete("/stewardships", h.removeStewardship)
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

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	roles, err := h.service.ListRoles(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

type roleForm struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form roleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	role, err := h.service.CreateRole(r.Context(), id, form.Name, form.Description)
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) showRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	roleID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "role id must be numeric")
		return
	}
	role, grants, err := h.service.GetRole(r.Context(), id, roleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role": role, "grants": grants})
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	roleID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "role id must be numeric")
		return
	}
	if err := h.service.DeleteRole(r.Context(), id, roleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type grantForm struct {
	Entity          string  `json:"entity" validate:"required,max=60"`
	Action          string  `json:"action" validate:"required,oneof=view create edit delete"`
	FilterName      string  `json:"filter_name" validate:"required,max=120"`
	FilterIntValue  *int64  `json:"filter_int_value"`
	FilterTextValue *string `json:"filter_text_value"`
	Scope           *string `json:"scope" validate:"omitempty,oneof=* owned"`
}

func (h *Handler) addGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	roleID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "role id must be numeric")
		return
	}
	var form grantForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	grant, err := h.service.AddGrant(r.Context(), id, GrantRow{
		RoleID:          roleID,
		Entity:          form.Entity,
		Action:          form.Action,
		FilterName:      form.FilterName,
		FilterIntValue:  form.FilterIntValue,
		FilterTextValue: form.FilterTextValue,
		Scope:           form.Scope,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, grant)
}

func (h *Handler) removeGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	grantID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "grant id must be numeric")
		return
	}
	if err := h.service.RemoveGrant(r.Context(), id, grantID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignmentForm struct {
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	RoleID  int64 `json:"role_id" validate:"required,gt=0"`
	RealmID int64 `json:"realm_id" validate:"required,gt=0"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form assignmentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	a, err := h.service.Assign(r.Context(), id, Assignment{UserID: form.UserID, RoleID: form.RoleID, RealmID: form.RealmID})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) unassign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form assignmentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Unassign(r.Context(), id, form.UserID, form.RoleID, form.RealmID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type membershipForm struct {
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	RealmID int64 `json:"realm_id" validate:"required,gt=0"`
	IsRoot  bool  `json:"is_root"`
}

func (h *Handler) addMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form membershipForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	m, err := h.service.AddMembership(r.Context(), id, Membership{UserID: form.UserID, RealmID: form.RealmID, IsRoot: form.IsRoot})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) removeMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form membershipForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	if err := h.service.RemoveMembership(r.Context(), id, form.UserID, form.RealmID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stewardshipForm struct {
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	RealmID int64 `json:"realm_id" validate:"required,gt=0"`
}

func (h *Handler) addStewardship(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form stewardshipForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	st, err := h.service.AddStewardship(r.Context(), id, Stewardship{UserID: form.UserID, RealmID: form.RealmID})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, st)
}

func (h *Handler) removeStewardship(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var form stewardshipForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	if err := h.service.RemoveStewardship(r.Context(), id, form.UserID, form.RealmID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
