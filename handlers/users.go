// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/pollbooth/accounts"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

// TokenIssuer mints session tokens for identities created at registration.
type TokenIssuer interface {
	IssueToken(userID string) string
}

type UserHandler struct {
	accounts *accounts.Service
	authn    auth.Authenticator
	issuer   TokenIssuer
}

// NewUserHandler builds the user endpoints. With a nil issuer, registration
// requires a credential from the external identity provider; otherwise a
// new identity and session token are created.
func NewUserHandler(a *accounts.Service, authn auth.Authenticator, issuer TokenIssuer) *UserHandler {
	return &UserHandler{accounts: a, authn: authn, issuer: issuer}
}

// Register handles POST /users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var uid string
	if h.issuer != nil {
		uid = auth.NewID()
	} else {
		var err error
		uid, err = h.authn.Authenticate(r.Context(), middleware.BearerToken(r))
		if err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "sign in to continue")
			return
		}
	}

	user, err := h.accounts.Register(r.Context(), uid, req.Email, req.DisplayName)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := models.RegisterUserResponse{User: user}
	if h.issuer != nil {
		resp.SessionToken = h.issuer.IssueToken(uid)
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.UserListResponse{Users: users})
}

// SetRole handles POST /users/{id}/role
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req models.SetRoleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.accounts.SetRole(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"), req.Role)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// SetActive handles POST /users/{id}/active
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req models.SetActiveRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.accounts.SetActive(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"), req.IsActive)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}
