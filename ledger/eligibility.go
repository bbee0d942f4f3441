// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"time"

	"github.com/danielhkuo/pollbooth/models"
)

// CheckVoter rejects administrators and deactivated accounts.
func CheckVoter(u models.User) error {
	if u.Role == models.RoleAdmin {
		return NewError(ErrForbidden, MsgAdminCannotVote)
	}
	if !u.IsActive {
		return NewError(ErrForbidden, MsgUserInactive)
	}
	return nil
}

// CheckAdmin allows only active administrators.
func CheckAdmin(u models.User) error {
	if u.Role != models.RoleAdmin {
		return NewError(ErrForbidden, MsgAdminOnly)
	}
	if !u.IsActive {
		return NewError(ErrForbidden, MsgUserInactive)
	}
	return nil
}

// checkPollOpen covers visibility, status and deadline, in that order.
// Draft polls are unpublished and reject votes like private ones.
func checkPollOpen(p models.Poll, now time.Time) error {
	if p.Visibility != models.VisibilityPublic {
		return NewError(ErrForbidden, MsgPollNotPublic)
	}
	if p.Status == models.StatusClosed {
		return NewError(ErrForbidden, MsgPollClosed)
	}
	if !now.Before(p.Deadline) {
		return NewError(ErrForbidden, MsgDeadlinePassed)
	}
	return nil
}

// checkBallot runs every poll-level vote precondition against a fresh read.
func checkBallot(p models.Poll, userID, choiceID string, now time.Time) error {
	if err := checkPollOpen(p, now); err != nil {
		return err
	}
	if HasVoted(p, userID) {
		return NewError(ErrDuplicateVote, MsgAlreadyVoted)
	}
	if choiceIndex(p, choiceID) < 0 {
		return NewError(ErrInvalidChoice, MsgChoiceNotFound)
	}
	return nil
}

// PollState derives whether a poll currently accepts votes.
func PollState(p models.Poll, now time.Time) string {
	if checkPollOpen(p, now) != nil {
		return models.StateClosed
	}
	return models.StateOpen
}

func choiceIndex(p models.Poll, choiceID string) int {
	if choiceID == "" {
		return -1
	}
	for i, c := range p.Choices {
		if c.ID == choiceID {
			return i
		}
	}
	return -1
}
