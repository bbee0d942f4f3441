// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrConflict      = errors.New("document version conflict")
	ErrAlreadyExists = errors.New("document already exists")
)

// Document is a stored JSON body plus its optimistic version.
// Version starts at 1 and increases by one on every successful update.
type Document struct {
	ID        string
	Version   int64
	Body      []byte
	UpdatedAt time.Time
}

// Store is the document database boundary. Update is a conditional write:
// it succeeds only while the stored version equals expectedVersion.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection, id string, body []byte) (Document, error)
	Update(ctx context.Context, collection, id string, body []byte, expectedVersion int64) (Document, error)
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Close() error
}

// Filter operators
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
)

// Filter compares the value at a dotted JSON path against Value.
type Filter struct {
	Path  string
	Op    string
	Value any
}

type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Where is shorthand for a single-filter query.
func Where(path, op string, value any) Query {
	return Query{Filters: []Filter{{Path: path, Op: op, Value: value}}}
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
	_ Store = (*FirestoreStore)(nil)
	_ Store = (*MongoStore)(nil)
)
