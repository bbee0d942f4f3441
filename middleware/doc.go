// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status, client IP and duration_ms per request.

# Identity

RequireIdentity resolves the Authorization bearer credential through an
auth.Authenticator and stores the user id in the request context:

	mux.HandleFunc("POST /polls/{id}/votes",
		middleware.RequireIdentity(authn, handler))

	uid := middleware.UserID(r.Context())

Requests without a valid credential get 401 "sign in to continue".

# Errors

WriteError maps ledger error kinds onto status codes:

	not found            404
	forbidden            403
	duplicate, conflict  409
	invalid input/choice 400
	transient            503 with Retry-After

Anything else is logged and reported as a 500.

# CORS Middleware

"*" answers with a literal wildcard and no credentials. A specific origin is
echoed with Access-Control-Allow-Credentials.

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
