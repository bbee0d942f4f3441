// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles SQL schema creation for the document store.

# Schema Creation

CreateSchema initializes the document table:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for the table and index.
The same DDL runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

A single table holds every collection:

  - document: (collection, id) primary key, version, JSON body, updated_at

Polls, users and audit entries live in the polls, users and auditLogs
collections. The version column backs conditional updates: a write only
lands when the stored version still matches the version the caller read.
*/
package db
