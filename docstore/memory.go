// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps documents in process. The mutex plays the role of the
// database's own concurrency control; callers still go through versioned
// conditional writes exactly as they would against a remote store.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		now:         time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, body []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]Document)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return Document{}, ErrAlreadyExists
	}

	doc := Document{ID: id, Version: 1, Body: append([]byte(nil), body...), UpdatedAt: s.now()}
	docs[id] = doc
	return copyDocument(doc), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, body []byte, expectedVersion int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	if doc.Version != expectedVersion {
		return Document{}, ErrConflict
	}

	doc = Document{ID: id, Version: doc.Version + 1, Body: append([]byte(nil), body...), UpdatedAt: s.now()}
	s.collections[collection][id] = doc
	return copyDocument(doc), nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	docs := make([]Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		docs = append(docs, copyDocument(doc))
	}
	s.mu.Unlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return ApplyQuery(docs, q)
}

func (s *MemoryStore) Close() error {
	return nil
}

func copyDocument(d Document) Document {
	d.Body = append([]byte(nil), d.Body...)
	return d
}
