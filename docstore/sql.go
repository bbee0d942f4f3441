// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollbooth/db"
)

// SQLStore keeps documents in one table on PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQLStore connects to the database, verifies the connection and
// creates the schema.
func OpenSQLStore(dialect, url string) (*SQLStore, error) {
	driver := dialect
	if dialect != db.DialectPostgres && dialect != db.DialectSQLite {
		return nil, errors.Errorf("unsupported SQL dialect %q", dialect)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if dialect == db.DialectSQLite {
		// SQLite allows a single writer; one connection also keeps
		// ":memory:" databases shared across callers.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &SQLStore{db: conn, dialect: dialect}, nil
}

// NewSQLStore wraps an existing connection whose schema is already created.
func NewSQLStore(conn *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: conn, dialect: dialect}
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (Document, error) {
	doc := Document{ID: id}
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT version, body, updated_at FROM document
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&doc.Version, &body, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "get %s/%s", collection, id)
	}

	doc.Body = []byte(body)
	return doc, nil
}

func (s *SQLStore) Create(ctx context.Context, collection, id string, body []byte) (Document, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO document (collection, id, version, body, updated_at)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (collection, id) DO NOTHING
	`, collection, id, string(body), now)
	if err != nil {
		return Document{}, errors.Wrapf(err, "create %s/%s", collection, id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Document{}, errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return Document{}, ErrAlreadyExists
	}

	return Document{ID: id, Version: 1, Body: append([]byte(nil), body...), UpdatedAt: now}, nil
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, body []byte, expectedVersion int64) (Document, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE document
		SET body = $1, version = version + 1, updated_at = $2
		WHERE collection = $3 AND id = $4 AND version = $5
	`, string(body), now, collection, id, expectedVersion)
	if err != nil {
		return Document{}, errors.Wrapf(err, "update %s/%s", collection, id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Document{}, errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		// Either the document is gone or someone else wrote first.
		if _, err := s.Get(ctx, collection, id); err != nil {
			return Document{}, err
		}
		return Document{}, ErrConflict
	}

	return Document{ID: id, Version: expectedVersion + 1, Body: append([]byte(nil), body...), UpdatedAt: now}, nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM document WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return errors.Wrapf(err, "delete %s/%s", collection, id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, body, updated_at FROM document
		WHERE collection = $1
		ORDER BY id
	`, collection)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", collection)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		var body string
		if err := rows.Scan(&doc.ID, &doc.Version, &body, &doc.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		doc.Body = []byte(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "query %s", collection)
	}

	return ApplyQuery(docs, q)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
