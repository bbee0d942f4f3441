// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

type PollHandler struct {
	ledger *ledger.Ledger
}

func NewPollHandler(l *ledger.Ledger) *PollHandler {
	return &PollHandler{ledger: l}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.ledger.CreatePoll(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{PollID: poll.ID})
}

// ListPolls handles GET /polls
// ?q= searches public polls, ?created_by= lists one admin's polls (admin
// only), otherwise the open polls are returned newest first.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var polls []models.Poll
	var err error
	switch {
	case query.Has("q"):
		polls, err = h.ledger.SearchPolls(ctx, query.Get("q"))
	case query.Get("created_by") != "":
		polls, err = h.ledger.PollsCreatedBy(ctx, middleware.UserID(ctx), query.Get("created_by"))
	default:
		limit := 0
		if s := query.Get("limit"); s != "" {
			limit, err = strconv.Atoi(s)
			if err != nil || limit < 0 {
				middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
		}
		polls, err = h.ledger.ActivePolls(ctx, limit)
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{Polls: polls})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	view, err := h.ledger.ViewPoll(r.Context(), r.PathValue("id"), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// EditPoll handles PUT /polls/{id}
func (h *PollHandler) EditPoll(w http.ResponseWriter, r *http.Request) {
	var req models.EditPollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.ledger.EditPoll(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, poll)
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeletePoll(r.Context(), middleware.UserID(r.Context()), r.PathValue("id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetVisibility handles POST /polls/{id}/visibility
// An empty body toggles between public and draft.
func (h *PollHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SetVisibilityRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	var poll models.Poll
	var err error
	if req.Visibility == "" {
		poll, err = h.ledger.ToggleVisibility(ctx, middleware.UserID(ctx), r.PathValue("id"))
	} else {
		poll, err = h.ledger.SetVisibility(ctx, middleware.UserID(ctx), r.PathValue("id"), req.Visibility)
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if err := h.ledger.ClosePoll(r.Context(), pollID, middleware.UserID(r.Context())); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"poll_id": pollID,
		"status":  models.StatusClosed,
	})
}
