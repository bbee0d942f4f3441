// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

ParseFlags returns a validated Config:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p, --port                 Server port (3318)
	-d, --database-url         SQLite file, PostgreSQL or MongoDB URL
	-t, --database-type        memory, sqlite, postgres, firestore, mongo
	--mongo-database           MongoDB database name
	--allowed-origin           CORS origin ("*")
	--identity-provider        token or firebase
	--session-salt             Session token HMAC secret
	--firebase-credentials     Service account file
	--firebase-project-id      Firebase project
	--admin-emails             Emails registered as administrators
	--log-level                debug, info, warn, error
	--vote-retry-attempts      Attempts on a version conflict (3)
	--vote-retry-delay         Initial conflict backoff (50ms)

# Environment Variables

Every flag falls back to the upper-cased variable with dashes replaced by
underscores, e.g. --session-salt and SESSION_SALT. CLI flags take
precedence over environment variables.

# Validation

  - SQL and MongoDB storage need a database URL
  - Firestore storage and Firebase identity need FIREBASE_PROJECT_ID
  - token identity needs SESSION_SALT
  - vote-retry-attempts must be at least 1
*/
package cliparse
