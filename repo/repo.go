// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/pollbooth/docstore"
	"github.com/danielhkuo/pollbooth/models"
)

// Repo gives typed access to the polls, users and auditLogs collections.
// Reads return the document version so callers can write conditionally.
type Repo struct {
	store docstore.Store
}

func New(store docstore.Store) *Repo {
	return &Repo{store: store}
}

// Store exposes the underlying document store.
func (r *Repo) Store() docstore.Store {
	return r.store
}

// Polls

func (r *Repo) GetPoll(ctx context.Context, id string) (models.Poll, int64, error) {
	doc, err := r.store.Get(ctx, models.CollectionPolls, id)
	if err != nil {
		return models.Poll{}, 0, err
	}
	poll, err := decodePoll(doc)
	if err != nil {
		return models.Poll{}, 0, err
	}
	return poll, doc.Version, nil
}

func (r *Repo) CreatePoll(ctx context.Context, poll models.Poll) error {
	body, err := encodePoll(poll)
	if err != nil {
		return err
	}
	_, err = r.store.Create(ctx, models.CollectionPolls, poll.ID, body)
	return err
}

// UpdatePoll writes the poll only if it is still at expectedVersion.
func (r *Repo) UpdatePoll(ctx context.Context, poll models.Poll, expectedVersion int64) (int64, error) {
	body, err := encodePoll(poll)
	if err != nil {
		return 0, err
	}
	doc, err := r.store.Update(ctx, models.CollectionPolls, poll.ID, body, expectedVersion)
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

func (r *Repo) DeletePoll(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.CollectionPolls, id)
}

func (r *Repo) QueryPolls(ctx context.Context, q docstore.Query) ([]models.Poll, error) {
	docs, err := r.store.Query(ctx, models.CollectionPolls, q)
	if err != nil {
		return nil, err
	}
	polls := make([]models.Poll, 0, len(docs))
	for _, doc := range docs {
		poll, err := decodePoll(doc)
		if err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, nil
}

// Users

func (r *Repo) GetUser(ctx context.Context, id string) (models.User, int64, error) {
	doc, err := r.store.Get(ctx, models.CollectionUsers, id)
	if err != nil {
		return models.User{}, 0, err
	}
	user, err := decodeUser(doc)
	if err != nil {
		return models.User{}, 0, err
	}
	return user, doc.Version, nil
}

func (r *Repo) CreateUser(ctx context.Context, user models.User) error {
	body, err := encodeUser(user)
	if err != nil {
		return err
	}
	_, err = r.store.Create(ctx, models.CollectionUsers, user.ID, body)
	return err
}

func (r *Repo) UpdateUser(ctx context.Context, user models.User, expectedVersion int64) (int64, error) {
	body, err := encodeUser(user)
	if err != nil {
		return 0, err
	}
	doc, err := r.store.Update(ctx, models.CollectionUsers, user.ID, body, expectedVersion)
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

func (r *Repo) QueryUsers(ctx context.Context, q docstore.Query) ([]models.User, error) {
	docs, err := r.store.Query(ctx, models.CollectionUsers, q)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Audit log

func (r *Repo) AppendAudit(ctx context.Context, entry models.AuditEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	_, err = r.store.Create(ctx, models.CollectionAudit, entry.ID, body)
	return err
}

func (r *Repo) QueryAudit(ctx context.Context, q docstore.Query) ([]models.AuditEntry, error) {
	docs, err := r.store.Query(ctx, models.CollectionAudit, q)
	if err != nil {
		return nil, err
	}
	entries := make([]models.AuditEntry, 0, len(docs))
	for _, doc := range docs {
		var entry models.AuditEntry
		if err := json.Unmarshal(doc.Body, &entry); err != nil {
			return nil, fmt.Errorf("%w: audit entry %s: %v", models.ErrInvalidDocument, doc.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func encodePoll(p models.Poll) ([]byte, error) {
	if p.Voters == nil {
		p.Voters = []models.VoteRecord{}
	}
	if err := models.ValidatePoll(p); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func decodePoll(doc docstore.Document) (models.Poll, error) {
	var p models.Poll
	if err := json.Unmarshal(doc.Body, &p); err != nil {
		return models.Poll{}, fmt.Errorf("%w: poll %s: %v", models.ErrInvalidDocument, doc.ID, err)
	}
	p.ID = doc.ID
	if err := models.ValidatePoll(p); err != nil {
		return models.Poll{}, err
	}
	return p, nil
}

func encodeUser(u models.User) ([]byte, error) {
	if err := models.ValidateUser(u); err != nil {
		return nil, err
	}
	return json.Marshal(u)
}

func decodeUser(doc docstore.Document) (models.User, error) {
	var u models.User
	if err := json.Unmarshal(doc.Body, &u); err != nil {
		return models.User{}, fmt.Errorf("%w: user %s: %v", models.ErrInvalidDocument, doc.ID, err)
	}
	u.ID = doc.ID
	if err := models.ValidateUser(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
