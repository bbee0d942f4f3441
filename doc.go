// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollbooth API server.

pollbooth runs single-choice polls for a group of registered users.
Administrators create and close polls; voters cast one vote per poll before
its deadline and everyone can read the tally.

# Starting the Server

The server reads flags, environment variables and an optional .env file:

	SESSION_SALT=... DATABASE_URL=./pollbooth.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings depend on the storage and identity choices:

  - DATABASE_URL (-d): SQLite file, PostgreSQL or MongoDB URL
  - DATABASE_TYPE (-t): memory, sqlite, postgres, firestore or mongo
  - SESSION_SALT: secret for session token HMAC (token identity)
  - FIREBASE_PROJECT_ID: required for firestore storage or firebase identity

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - VOTE_RETRY_ATTEMPTS, VOTE_RETRY_DELAY: conflict retry policy
  - LOG_LEVEL: debug, info, warn or error
  - ADMIN_EMAILS: comma-separated emails that register as administrators
  - ALLOWED_ORIGIN: CORS origin; "*" allows any origin without credentials

# Architecture

  - ledger: vote recording, tallying and poll administration
  - accounts: user registration, roles and activity
  - audit: append-only record of state changes
  - docstore: versioned document storage (memory, SQL, Firestore, MongoDB)
  - repo: typed access to the polls, users and auditLogs collections
  - handlers, router, middleware: the HTTP surface
  - metrics: Prometheus counters for the vote path
  - auth: session tokens and Firebase ID tokens
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
