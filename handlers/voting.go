// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

// maxReasonLength bounds the optional free-text reason on a vote
const maxReasonLength = 500

type VotingHandler struct {
	ledger *ledger.Ledger
}

func NewVotingHandler(l *ledger.Ledger) *VotingHandler {
	return &VotingHandler{ledger: l}
}

// CastVote handles POST /polls/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if len(reason) > maxReasonLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "reason is too long")
		return
	}

	pollID := r.PathValue("id")
	rec, err := h.ledger.CastVote(r.Context(), pollID, req.ChoiceID, middleware.UserID(r.Context()), reason)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		PollID:   pollID,
		ChoiceID: rec.ChoiceID,
		VotedAt:  rec.VotedAt,
		Message:  "Your vote has been recorded",
	})
}

// MyVotes handles GET /me/votes
func (h *VotingHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	history, err := h.ledger.VotingHistory(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.VoteHistoryResponse{Votes: history})
}
