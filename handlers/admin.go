// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollbooth/accounts"
	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

// defaultAuditLimit caps GET /admin/audit when no limit is given
const defaultAuditLimit = 100

type AdminHandler struct {
	ledger   *ledger.Ledger
	accounts *accounts.Service
	audit    *audit.Log
}

func NewAdminHandler(l *ledger.Ledger, a *accounts.Service, log *audit.Log) *AdminHandler {
	return &AdminHandler{ledger: l, accounts: a, audit: log}
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := middleware.UserID(ctx)

	polls, err := h.ledger.Stats(ctx, uid)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	users, err := h.accounts.UserStats(ctx, uid)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AdminStatsResponse{Polls: polls, Users: users})
}

// AuditLog handles GET /admin/audit
// ?order=asc|desc (default desc), ?action= filters, ?limit= caps.
func (h *AdminHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.accounts.RequireAdmin(ctx, middleware.UserID(ctx)); err != nil {
		middleware.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	descending := true
	switch query.Get("order") {
	case "", "desc":
	case "asc":
		descending = false
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	limit := defaultAuditLimit
	if s := query.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.audit.List(ctx, query.Get("action"), descending, limit)
	if err != nil {
		middleware.WriteError(w, ledger.FromStore(err, "audit log not found"))
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.AuditLogResponse{Entries: entries})
}
