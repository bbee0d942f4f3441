// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Stored documents:

  - Poll: question, choices with cached counts, deadline, visibility,
    status and the list of VoteRecords
  - User: identity, role and whether the account is active
  - AuditEntry: who did what and when

A poll's choice counts always equal the number of VoteRecords naming that
choice; both are written in the same conditional update.

# Derived Types

  - Tally, ChoiceResult: per-choice counts and percentages
  - PollView: a poll plus its OPEN/CLOSED state and has_voted
  - PollStats, UserStats, VoteHistoryEntry: admin and history views

# Constants

Visibility:

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityDraft   = "draft"

Status:

	StatusActive = "active"
	StatusClosed = "closed"

Roles:

	RoleAdmin = "admin"
	RoleVoter = "voter"

# Validation

ValidatePoll and ValidateUser check decoded documents before the ledger
trusts them; failures wrap ErrInvalidDocument.
*/
package models
