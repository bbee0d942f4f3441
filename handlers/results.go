// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
)

type ResultsHandler struct {
	ledger *ledger.Ledger
}

func NewResultsHandler(l *ledger.Ledger) *ResultsHandler {
	return &ResultsHandler{ledger: l}
}

// GetResults handles GET /polls/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	poll, tally, err := h.ledger.TallyPoll(r.Context(), r.PathValue("id"), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	now := h.ledger.Now()
	state := ledger.PollState(poll, now)
	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Tally:    tally,
		State:    state,
		ClosesIn: closesIn(poll, state, now),
	})
}

// closesIn describes the deadline relative to now, e.g. "2 hours from now"
// or "closed 3 days ago".
func closesIn(p models.Poll, state string, now time.Time) string {
	if state == models.StateOpen {
		return humanize.RelTime(p.Deadline, now, "ago", "from now")
	}
	if p.Deadline.After(now) {
		return "closed"
	}
	return "closed " + humanize.RelTime(p.Deadline, now, "ago", "from now")
}
