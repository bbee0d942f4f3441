// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package accounts

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/docstore"
	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/repo"
)

var ErrAlreadyRegistered = errors.New("user already registered")

// Service manages user documents. Errors are ledger errors so the HTTP
// layer maps them the same way as vote failures.
type Service struct {
	repo   *repo.Repo
	audit  *audit.Log
	now    func() time.Time
	admins map[string]bool
}

type Option func(*Service)

// WithAdminEmails makes registrations from these addresses administrators.
// Matching ignores case.
func WithAdminEmails(emails []string) Option {
	return func(s *Service) {
		for _, e := range emails {
			if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
				s.admins[e] = true
			}
		}
	}
}

func New(r *repo.Repo, a *audit.Log, now func() time.Time, opts ...Option) *Service {
	if now == nil {
		now = time.Now
	}
	if a == nil {
		a = audit.New(r, now)
	}
	s := &Service{repo: r, audit: a, now: now, admins: map[string]bool{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an active account for an authenticated identity. The
// account is a voter unless its email is one of the configured admin emails.
func (s *Service) Register(ctx context.Context, userID, email, displayName string) (models.User, error) {
	if userID == "" {
		return models.User{}, ledger.NewError(ledger.ErrInvalidInput, "user id is required")
	}
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return models.User{}, ledger.NewError(ledger.ErrInvalidInput, "a valid email is required")
	}
	role := models.RoleVoter
	if s.admins[strings.ToLower(addr.Address)] {
		role = models.RoleAdmin
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	user := models.User{
		ID:            userID,
		Email:         email,
		DisplayName:   displayName,
		Role:          role,
		IsActive:      true,
		CreatedAt:     s.now().UTC(),
		SchemaVersion: models.SchemaVersion,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, docstore.ErrAlreadyExists) {
			return models.User{}, &ledger.Error{Kind: ledger.ErrConflict, Message: "this account is already registered", Err: ErrAlreadyRegistered}
		}
		return models.User{}, ledger.FromStore(err, ledger.MsgUserNotFound)
	}

	slog.Info("user registered", "user_id", userID, "role", role)
	s.audit.Record(ctx, userID, audit.ActionRegister, map[string]string{
		"email": email,
		"role":  role,
	})
	return user, nil
}

func (s *Service) Get(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, ledger.NewError(ledger.ErrNotFound, ledger.MsgUserNotFound)
	}
	u, _, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, ledger.FromStore(err, ledger.MsgUserNotFound)
	}
	return u, nil
}

// RequireAdmin returns the actor if they are an active administrator.
func (s *Service) RequireAdmin(ctx context.Context, actorID string) (models.User, error) {
	u, err := s.Get(ctx, actorID)
	if err != nil {
		return models.User{}, err
	}
	if err := ledger.CheckAdmin(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// List returns every user ordered by creation time.
func (s *Service) List(ctx context.Context, actorID string) ([]models.User, error) {
	if _, err := s.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.repo.QueryUsers(ctx, docstore.Query{OrderBy: "createdAt"})
	if err != nil {
		return nil, ledger.FromStore(err, ledger.MsgUserNotFound)
	}
	return users, nil
}

// SetRole promotes or demotes a user. Administrators cannot change their
// own role.
func (s *Service) SetRole(ctx context.Context, actorID, userID, role string) (models.User, error) {
	if _, err := s.RequireAdmin(ctx, actorID); err != nil {
		return models.User{}, err
	}
	if !models.IsValidRole(role) {
		return models.User{}, ledger.NewError(ledger.ErrInvalidInput, "role must be admin or voter")
	}
	if actorID == userID {
		return models.User{}, ledger.NewError(ledger.ErrForbidden, "you cannot change your own role")
	}

	u, err := s.update(ctx, userID, func(u *models.User) { u.Role = role })
	if err != nil {
		return models.User{}, err
	}
	slog.Info("user role changed", "user_id", userID, "role", role, "by", actorID)
	s.audit.Record(ctx, actorID, audit.ActionSetRole, map[string]string{
		"targetUserId": userID,
		"role":         role,
	})
	return u, nil
}

// SetActive enables or disables a user. Administrators cannot deactivate
// themselves.
func (s *Service) SetActive(ctx context.Context, actorID, userID string, active bool) (models.User, error) {
	if _, err := s.RequireAdmin(ctx, actorID); err != nil {
		return models.User{}, err
	}
	if actorID == userID && !active {
		return models.User{}, ledger.NewError(ledger.ErrForbidden, "you cannot deactivate your own account")
	}

	u, err := s.update(ctx, userID, func(u *models.User) { u.IsActive = active })
	if err != nil {
		return models.User{}, err
	}
	slog.Info("user activity changed", "user_id", userID, "is_active", active, "by", actorID)
	s.audit.Record(ctx, actorID, audit.ActionSetActive, map[string]string{
		"targetUserId": userID,
		"isActive":     strconv.FormatBool(active),
	})
	return u, nil
}

// UserStats counts users by activity and role.
func (s *Service) UserStats(ctx context.Context, actorID string) (models.UserStats, error) {
	users, err := s.List(ctx, actorID)
	if err != nil {
		return models.UserStats{}, err
	}
	stats := models.UserStats{TotalUsers: len(users)}
	for _, u := range users {
		if u.IsActive {
			stats.ActiveUsers++
		}
		if u.Role == models.RoleAdmin {
			stats.AdminUsers++
		}
	}
	return stats, nil
}

// update is a single conditional write; a conflicting concurrent change is
// reported to the caller rather than overwritten.
func (s *Service) update(ctx context.Context, userID string, mutate func(*models.User)) (models.User, error) {
	u, version, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, ledger.FromStore(err, ledger.MsgUserNotFound)
	}
	mutate(&u)
	if _, err := s.repo.UpdateUser(ctx, u, version); err != nil {
		return models.User{}, ledger.FromStore(err, ledger.MsgUserNotFound)
	}
	return u, nil
}
