// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger records votes and computes tallies.

# Casting a Vote

	rec, err := l.CastVote(ctx, pollID, choiceID, userID, reason)

A vote is appended to the poll's voter list and the chosen count is
incremented in one conditional write against the version that was read.
If another writer got there first the whole attempt, reads and checks
included, is repeated with backoff:

	l := ledger.New(r, ledger.WithRetry(5, 20*time.Millisecond))

Once retries are exhausted the call fails with ErrConflict; storage outages
fail with ErrTransient and are not retried.

# Errors

Every failure is an *Error whose Kind can be matched with errors.Is:

	if errors.Is(err, ledger.ErrDuplicateVote) { ... }

Message(err) returns the human readable text.

# Tallies

Tally is a pure function of a poll. Percentages are relative to the total
number of votes and are zero for a poll nobody voted on.

# Administration

CreatePoll, EditPoll, DeletePoll, ClosePoll, SetVisibility and Stats
require an active administrator. Polls that are not public are reported
as not found to everyone else.
*/
package ledger
