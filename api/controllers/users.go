package controllers

import (
	"net/http"

	"github.com/angelmondragon/backoffice/api/middleware"
	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	"github.com/angelmondragon/backoffice/internal/users"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

type createUserRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ManageProducts  bool   `json:"manageProducts"`
	ManageInventory bool   `json:"manageInventory"`
	ManageUsers     bool   `json:"manageUsers"`
}

type updateNameRequest struct {
	Name string `json:"name"`
}

// UsersHandler serves company member management.
type UsersHandler struct {
	svc     users.Service
	cookies SessionCookies
	logg    *logger.Logger
}

func NewUsersHandler(svc users.Service, cookies SessionCookies, logg *logger.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, cookies: cookies, logg: logg}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), middleware.CompanyIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"users": list})
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createUserRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	user, err := h.svc.Create(r.Context(), middleware.CompanyIDFromContext(r.Context()), users.CreateInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Permissions: users.Permissions{
			ManageProducts:  body.ManageProducts,
			ManageInventory: body.ManageInventory,
			ManageUsers:     body.ManageUsers,
		},
	})
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *UsersHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	targetID, err := validators.ParseIDParam(r, "id")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	var patch users.PermissionPatch
	if err := validators.DecodeJSONBody(r, &patch); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	ctx := r.Context()
	user, err := h.svc.UpdatePermissions(ctx, middleware.UserIDFromContext(ctx), middleware.CompanyIDFromContext(ctx), targetID, patch)
	if err != nil {
		responses.WriteError(ctx, h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"user": user})
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	targetID, err := validators.ParseIDParam(r, "id")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	ctx := r.Context()
	if err := h.svc.Delete(ctx, middleware.UserIDFromContext(ctx), middleware.CompanyIDFromContext(ctx), targetID); err != nil {
		responses.WriteError(ctx, h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"deleted": map[string]int64{"id": targetID}})
}

// UpdateOwnName renames the caller and replaces the cookie with a reissued token.
func (h *UsersHandler) UpdateOwnName(w http.ResponseWriter, r *http.Request) {
	targetID, err := validators.ParseIDParam(r, "id")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return
	}
	var body updateNameRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.UpdateOwnName(r.Context(), claims, targetID, body.Name)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	h.cookies.Set(w, result.Token, result.TokenTTL)
	responses.WriteSuccess(w, map[string]any{"message": "User updated successfully", "user": result.User})
}
