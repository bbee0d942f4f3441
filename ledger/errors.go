// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"

	"github.com/danielhkuo/pollbooth/docstore"
	"github.com/danielhkuo/pollbooth/models"
)

// Error kinds. Match with errors.Is; every *Error carries exactly one.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrDuplicateVote = errors.New("duplicate vote")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrConflict      = errors.New("conflict")
	ErrTransient     = errors.New("transient store failure")
	ErrInvalidInput  = errors.New("invalid input")
)

// User-facing messages
const (
	MsgUserNotFound     = "user not found"
	MsgPollNotFound     = "poll not found"
	MsgAdminCannotVote  = "administrators cannot vote"
	MsgUserInactive     = "your account has been deactivated"
	MsgAdminOnly        = "only administrators can do this"
	MsgPollNotPublic    = "this poll is not open to voters"
	MsgPollClosed       = "this poll has been closed"
	MsgDeadlinePassed   = "the voting deadline has passed"
	MsgAlreadyVoted     = "you have already voted on this poll"
	MsgChoiceNotFound   = "that choice is not part of this poll"
	MsgConflict         = "the poll was updated by someone else, please try again"
	MsgStoreUnavailable = "storage is temporarily unavailable, please try again"
)

// Error is a classified ledger failure with a message that can be shown to
// the user as-is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns an error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Message returns the user-facing message for err, or "" if err is not a
// ledger error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// KindName is a short label for err's kind, used for metrics and logs.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrDuplicateVote):
		return "duplicate_vote"
	case errors.Is(err, ErrInvalidChoice):
		return "invalid_choice"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}

// FromStore classifies a repository error. Not-found becomes ErrNotFound with
// notFoundMsg, version conflicts become ErrConflict, malformed documents pass
// through untouched and everything else is treated as a transient failure.
func FromStore(err error, notFoundMsg string) error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, docstore.ErrNotFound):
		return &Error{Kind: ErrNotFound, Message: notFoundMsg, Err: err}
	case errors.Is(err, docstore.ErrConflict):
		return &Error{Kind: ErrConflict, Message: MsgConflict, Err: err}
	case errors.Is(err, models.ErrInvalidDocument):
		return err
	}
	return &Error{Kind: ErrTransient, Message: MsgStoreUnavailable, Err: err}
}

func invalidInput(message string) *Error {
	return NewError(ErrInvalidInput, message)
}
