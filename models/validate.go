// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
)

var ErrInvalidDocument = errors.New("invalid document")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...))
}

// ValidatePoll checks a stored poll document. Missing required fields are
// rejected rather than defaulted.
func ValidatePoll(p Poll) error {
	if p.SchemaVersion != SchemaVersion {
		return invalid("poll %s: unsupported schema version %d", p.ID, p.SchemaVersion)
	}
	if p.Question == "" {
		return invalid("poll %s: question is required", p.ID)
	}
	if len(p.Choices) < MinChoices {
		return invalid("poll %s: at least %d choices required", p.ID, MinChoices)
	}
	seen := make(map[string]bool, len(p.Choices))
	total := 0
	for _, c := range p.Choices {
		if c.ID == "" || c.Text == "" {
			return invalid("poll %s: choice id and text are required", p.ID)
		}
		if seen[c.ID] {
			return invalid("poll %s: duplicate choice id %s", p.ID, c.ID)
		}
		if c.Votes < 0 {
			return invalid("poll %s: negative vote count on %s", p.ID, c.ID)
		}
		seen[c.ID] = true
		total += c.Votes
	}
	if p.Deadline.IsZero() {
		return invalid("poll %s: deadline is required", p.ID)
	}
	if !IsValidVisibility(p.Visibility) {
		return invalid("poll %s: bad visibility %q", p.ID, p.Visibility)
	}
	if p.Status != StatusActive && p.Status != StatusClosed {
		return invalid("poll %s: bad status %q", p.ID, p.Status)
	}
	if p.CreatedBy == "" || p.CreatedAt.IsZero() {
		return invalid("poll %s: provenance is required", p.ID)
	}

	voters := make(map[string]bool, len(p.Voters))
	for _, v := range p.Voters {
		if v.UserID == "" || !seen[v.ChoiceID] {
			return invalid("poll %s: malformed vote record", p.ID)
		}
		if voters[v.UserID] {
			return invalid("poll %s: duplicate vote record for %s", p.ID, v.UserID)
		}
		voters[v.UserID] = true
	}
	if total != len(p.Voters) {
		return invalid("poll %s: %d votes counted but %d voters recorded", p.ID, total, len(p.Voters))
	}

	return nil
}

// ValidateUser checks a stored user document.
func ValidateUser(u User) error {
	if u.SchemaVersion != SchemaVersion {
		return invalid("user %s: unsupported schema version %d", u.ID, u.SchemaVersion)
	}
	if u.ID == "" {
		return invalid("user id is required")
	}
	if !IsValidRole(u.Role) {
		return invalid("user %s: bad role %q", u.ID, u.Role)
	}
	return nil
}

func IsValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityDraft:
		return true
	}
	return false
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleVoter
}
