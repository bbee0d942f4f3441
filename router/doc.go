// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollbooth API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{
		Ledger:   l,
		Accounts: accts,
		Audit:    auditLog,
		Authn:    authn,
		Metrics:  ms,
	})

# Endpoints

Open:

	GET  /health          - Liveness
	GET  /metrics         - Prometheus metrics
	POST /users/register  - Create an account

Everything else requires "Authorization: Bearer <credential>".

Accounts:

	GET  /users/me          - Current user
	GET  /users             - List users (admin)
	POST /users/{id}/role   - Set role (admin)
	POST /users/{id}/active - Enable or disable (admin)

Polls:

	POST   /polls                 - Create poll (admin)
	GET    /polls                 - Open polls, ?q= search, ?created_by=
	GET    /polls/{id}            - Poll with state and has_voted
	PUT    /polls/{id}            - Edit poll (admin)
	DELETE /polls/{id}            - Delete poll (admin)
	POST   /polls/{id}/visibility - Set or toggle visibility (admin)
	POST   /polls/{id}/close      - Close poll (admin)

Voting and results:

	POST /polls/{id}/votes   - Cast a vote
	GET  /polls/{id}/results - Tally
	GET  /me/votes           - Voting history

Administration:

	GET /admin/stats - Poll and user statistics
	GET /admin/audit - Audit log

# Registration

When Authn can mint session tokens (auth.TokenAuthenticator), registration
creates the identity and returns a token. Otherwise the caller registers
with a credential from the external identity provider.
*/
package router
