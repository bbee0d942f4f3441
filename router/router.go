// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pollbooth/accounts"
	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/handlers"
	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/metrics"
	"github.com/danielhkuo/pollbooth/middleware"
)

// Services are the dependencies shared by every handler.
type Services struct {
	Ledger   *ledger.Ledger
	Accounts *accounts.Service
	Audit    *audit.Log
	Authn    auth.Authenticator
	Metrics  *metrics.MetricService
}

func NewRouter(s Services) *http.ServeMux {
	mux := http.NewServeMux()

	// Session-token deployments create identities at registration
	issuer, _ := s.Authn.(handlers.TokenIssuer)

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(s.Ledger)
	votingHandler := handlers.NewVotingHandler(s.Ledger)
	resultsHandler := handlers.NewResultsHandler(s.Ledger)
	userHandler := handlers.NewUserHandler(s.Accounts, s.Authn, issuer)
	adminHandler := handlers.NewAdminHandler(s.Ledger, s.Accounts, s.Audit)

	signedIn := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireIdentity(s.Authn, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", s.Metrics.Handler())

	// Accounts
	mux.HandleFunc("POST /users/register", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /users/me", signedIn(userHandler.Me))
	mux.HandleFunc("GET /users", signedIn(userHandler.ListUsers))
	mux.HandleFunc("POST /users/{id}/role", signedIn(userHandler.SetRole))
	mux.HandleFunc("POST /users/{id}/active", signedIn(userHandler.SetActive))

	// Poll management
	mux.HandleFunc("POST /polls", signedIn(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", signedIn(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", signedIn(pollHandler.GetPoll))
	mux.HandleFunc("PUT /polls/{id}", signedIn(pollHandler.EditPoll))
	mux.HandleFunc("DELETE /polls/{id}", signedIn(pollHandler.DeletePoll))
	mux.HandleFunc("POST /polls/{id}/visibility", signedIn(pollHandler.SetVisibility))
	mux.HandleFunc("POST /polls/{id}/close", signedIn(pollHandler.ClosePoll))

	// Voting and results
	mux.HandleFunc("POST /polls/{id}/votes", signedIn(votingHandler.CastVote))
	mux.HandleFunc("GET /me/votes", signedIn(votingHandler.MyVotes))
	mux.HandleFunc("GET /polls/{id}/results", signedIn(resultsHandler.GetResults))

	// Administration
	mux.HandleFunc("GET /admin/stats", signedIn(adminHandler.Stats))
	mux.HandleFunc("GET /admin/audit", signedIn(adminHandler.AuditLog))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollbooth API v1"))
	})

	return mux
}
