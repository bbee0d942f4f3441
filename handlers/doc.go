// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollbooth API.

# Handler Types

Each handler is a struct holding the services it calls:

  - PollHandler: poll lifecycle (create, edit, delete, visibility, close)
  - VotingHandler: casting votes and voting history
  - ResultsHandler: tallies with a humanized deadline
  - UserHandler: registration, roles and activity
  - AdminHandler: statistics and the audit log

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(l)

Handlers run behind middleware.RequireIdentity and read the caller with
middleware.UserID. Service errors go through middleware.WriteError so the
status code follows the ledger error kind.

# Voting Flow

	POST /polls/{id}/votes {"choice_id": "...", "reason": "..."}

The ledger checks, in order: the user exists, is not an administrator and
is active; the poll exists, is public, is not closed and its deadline has
not passed; the user has not voted; the choice exists. The first failing
check decides the response.

# Results

	GET /polls/{id}/results

Returns the tally, the derived OPEN/CLOSED state and closes_in, e.g.
"2 hours from now" or "closed 3 days ago".
*/
package handlers
