// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/docstore"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/repo"
)

// Actions written to the audit log
const (
	ActionRegister      = "register"
	ActionSetRole       = "set_role"
	ActionSetActive     = "set_active"
	ActionCreatePoll    = "create_poll"
	ActionUpdatePoll    = "update_poll"
	ActionDeletePoll    = "delete_poll"
	ActionClosePoll     = "close_poll"
	ActionSetVisibility = "set_visibility"
	ActionVote          = "vote"
)

// Log appends entries to the auditLogs collection.
type Log struct {
	repo *repo.Repo
	now  func() time.Time
}

func New(r *repo.Repo, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{repo: r, now: now}
}

// Record writes an entry. Failures are logged, never returned.
func (l *Log) Record(ctx context.Context, userID, action string, details map[string]string) {
	entry := models.AuditEntry{
		ID:        auth.NewID(),
		UserID:    userID,
		Action:    action,
		Timestamp: l.now().UTC(),
		Details:   details,
	}
	if err := l.repo.AppendAudit(ctx, entry); err != nil {
		slog.Error("failed to write audit entry",
			"action", action,
			"user_id", userID,
			"error", err)
	}
}

// List returns entries ordered by timestamp, optionally filtered by action.
func (l *Log) List(ctx context.Context, action string, descending bool, limit int) ([]models.AuditEntry, error) {
	q := docstore.Query{OrderBy: "timestamp", Descending: descending, Limit: limit}
	if action != "" {
		q.Filters = []docstore.Filter{{Path: "action", Op: docstore.OpEqual, Value: action}}
	}
	return l.repo.QueryAudit(ctx, q)
}
