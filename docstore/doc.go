// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package docstore is the document database boundary.

# Documents

A Document is a JSON body with an optimistic version. Create writes
version 1; every Update bumps the version by one:

	doc, err := store.Get(ctx, "polls", id)
	doc, err = store.Update(ctx, "polls", id, body, doc.Version)
	if errors.Is(err, docstore.ErrConflict) {
		// someone else wrote first; re-read and try again
	}

Update is the only mutual exclusion callers may rely on. It is enforced by
the backend itself, so it holds across processes.

# Queries

Query filters on dotted JSON paths, orders and limits:

	docs, err := store.Query(ctx, "polls", docstore.Query{
		Filters: []docstore.Filter{{Path: "visibility", Op: "==", Value: "public"}},
		OrderBy: "createdAt",
		Descending: true,
		Limit: 5,
	})

RFC 3339 strings compare as instants, numbers as float64.

# Backends

  - MemoryStore: in-process, for tests and local development
  - SQLStore: PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite)
  - FirestoreStore: Cloud Firestore, CAS inside RunTransaction
  - MongoStore: MongoDB (globalsign/mgo), CAS on an {_id, version} selector

Errors other than ErrNotFound, ErrConflict and ErrAlreadyExists mean the
backend could not be reached or failed; callers treat them as transient.
*/
package docstore
