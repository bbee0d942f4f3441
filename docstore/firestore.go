// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"encoding/json"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// versionField holds the optimistic version next to the document fields.
const versionField = "_version"

// FirestoreStore keeps each document as native Firestore fields so the
// data stays readable from the Firebase console.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	return fromSnapshot(snap)
}

func (s *FirestoreStore) Create(ctx context.Context, collection, id string, body []byte) (Document, error) {
	fields, err := toFields(body, 1)
	if err != nil {
		return Document{}, err
	}

	wr, err := s.client.Collection(collection).Doc(id).Create(ctx, fields)
	if status.Code(err) == codes.AlreadyExists {
		return Document{}, ErrAlreadyExists
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "create %s/%s", collection, id)
	}

	return Document{ID: id, Version: 1, Body: append([]byte(nil), body...), UpdatedAt: wr.UpdateTime}, nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, body []byte, expectedVersion int64) (Document, error) {
	fields, err := toFields(body, expectedVersion+1)
	if err != nil {
		return Document{}, err
	}

	ref := s.client.Collection(collection).Doc(id)
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := versionOf(snap)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return ErrConflict
		}
		return tx.Set(ref, fields)
	})

	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return Document{}, err
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "update %s/%s", collection, id)
	}

	return s.Get(ctx, collection, id)
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "delete %s/%s", collection, id)
	}
	return nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", collection)
	}

	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		doc, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	return ApplyQuery(docs, q)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func toFields(body []byte, version int64) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.Wrap(err, "document body must be a JSON object")
	}
	fields[versionField] = version
	return fields, nil
}

func versionOf(snap *firestore.DocumentSnapshot) (int64, error) {
	v, err := snap.DataAt(versionField)
	if err != nil {
		return 0, errors.Wrapf(err, "document %s has no version", snap.Ref.ID)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	}
	return 0, errors.Errorf("document %s has a malformed version", snap.Ref.ID)
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (Document, error) {
	version, err := versionOf(snap)
	if err != nil {
		return Document{}, err
	}

	fields := snap.Data()
	delete(fields, versionField)
	body, err := json.Marshal(fields)
	if err != nil {
		return Document{}, errors.Wrapf(err, "encode %s", snap.Ref.ID)
	}

	return Document{ID: snap.Ref.ID, Version: version, Body: body, UpdatedAt: snap.UpdateTime}, nil
}
