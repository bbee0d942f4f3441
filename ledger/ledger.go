// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/metrics"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/repo"
)

// Conflict retry defaults
const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 50 * time.Millisecond

	maxRetryDelay = 2 * time.Second
)

// errUnchanged lets a poll mutation skip the write.
var errUnchanged = errors.New("poll unchanged")

// Ledger records votes and administers polls. Every poll write is
// conditional on the version that was read; on a version conflict the whole
// read-check-write cycle is repeated with exponential backoff.
type Ledger struct {
	repo     *repo.Repo
	audit    *audit.Log
	metrics  *metrics.MetricService
	now      func() time.Time
	attempts uint
	delay    time.Duration
}

type Option func(*Ledger)

// WithClock overrides the clock used for deadlines and vote timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithRetry sets the number of write attempts and the initial backoff.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(l *Ledger) {
		if attempts > 0 {
			l.attempts = attempts
		}
		if delay > 0 {
			l.delay = delay
		}
	}
}

func WithMetrics(m *metrics.MetricService) Option {
	return func(l *Ledger) { l.metrics = m }
}

func WithAudit(a *audit.Log) Option {
	return func(l *Ledger) { l.audit = a }
}

func New(r *repo.Repo, opts ...Option) *Ledger {
	l := &Ledger{
		repo:     r,
		now:      time.Now,
		attempts: DefaultRetryAttempts,
		delay:    DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.audit == nil {
		l.audit = audit.New(r, l.now)
	}
	return l
}

// CastVote records voterID's vote for choiceID on pollID.
//
// Checks run in order and the first failure is returned: the voter exists,
// is not an administrator and is active; the poll exists, is public, is not
// closed and its deadline is in the future; the voter has not voted yet; the
// choice belongs to the poll. Nothing is written unless every check passes.
func (l *Ledger) CastVote(ctx context.Context, pollID, choiceID, voterID, reason string) (models.VoteRecord, error) {
	start := time.Now()
	record, err := l.castVote(ctx, pollID, choiceID, voterID, reason)
	l.metrics.ObserveVoteDuration(time.Since(start))

	if err != nil {
		l.metrics.IncVoteRejected(KindName(err))
		slog.Info("vote rejected",
			"poll_id", pollID,
			"user_id", voterID,
			"kind", KindName(err),
			"error", err)
		return models.VoteRecord{}, err
	}

	l.metrics.IncVotesCast()
	slog.Info("vote recorded",
		"poll_id", pollID,
		"user_id", voterID,
		"choice_id", choiceID)
	l.audit.Record(ctx, voterID, audit.ActionVote, map[string]string{
		"pollId":   pollID,
		"choiceId": choiceID,
	})
	return record, nil
}

func (l *Ledger) castVote(ctx context.Context, pollID, choiceID, voterID, reason string) (models.VoteRecord, error) {
	voter, err := l.user(ctx, voterID)
	if err != nil {
		return models.VoteRecord{}, err
	}
	if err := CheckVoter(voter); err != nil {
		return models.VoteRecord{}, err
	}

	var record models.VoteRecord
	err = l.updatePoll(ctx, pollID, func(p *models.Poll) error {
		now := l.now()
		if err := checkBallot(*p, voterID, choiceID, now); err != nil {
			return err
		}
		p.Choices[choiceIndex(*p, choiceID)].Votes++
		record = models.VoteRecord{
			UserID:   voterID,
			ChoiceID: choiceID,
			Reason:   reason,
			VotedAt:  now.UTC(),
		}
		p.Voters = append(p.Voters, record)
		return nil
	})
	if err != nil {
		return models.VoteRecord{}, err
	}
	return record, nil
}

// ClosePoll marks a poll closed without touching its deadline. Closing an
// already closed poll succeeds without a write.
func (l *Ledger) ClosePoll(ctx context.Context, pollID, actorID string) error {
	if _, err := l.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	changed := false
	err := l.updatePoll(ctx, pollID, func(p *models.Poll) error {
		changed = false
		if p.Status == models.StatusClosed {
			return errUnchanged
		}
		p.Status = models.StatusClosed
		changed = true
		return nil
	})
	if err != nil {
		return err
	}
	if changed {
		l.metrics.IncPollsClosed()
		slog.Info("poll closed", "poll_id", pollID, "user_id", actorID)
		l.audit.Record(ctx, actorID, audit.ActionClosePoll, map[string]string{"pollId": pollID})
	}
	return nil
}

// TallyPoll loads a poll the viewer may see and tallies it.
func (l *Ledger) TallyPoll(ctx context.Context, pollID, viewerID string) (models.Poll, models.Tally, error) {
	poll, _, err := l.visiblePoll(ctx, pollID, viewerID)
	if err != nil {
		return models.Poll{}, models.Tally{}, err
	}
	return poll, Tally(poll), nil
}

// HasVotedPoll reports whether userID has voted on pollID. Polls the user
// may not see are reported as not found.
func (l *Ledger) HasVotedPoll(ctx context.Context, pollID, userID string) (bool, error) {
	poll, _, err := l.visiblePoll(ctx, pollID, userID)
	if err != nil {
		return false, err
	}
	return HasVoted(poll, userID), nil
}

// ViewPoll returns the poll with its derived state. Voter records are only
// included for administrators.
func (l *Ledger) ViewPoll(ctx context.Context, pollID, viewerID string) (models.PollView, error) {
	poll, viewer, err := l.visiblePoll(ctx, pollID, viewerID)
	if err != nil {
		return models.PollView{}, err
	}
	view := models.PollView{
		Poll:     poll,
		State:    PollState(poll, l.now()),
		HasVoted: HasVoted(poll, viewerID),
	}
	if viewer.Role != models.RoleAdmin {
		view.Poll.Voters = nil
	}
	return view, nil
}

// Now returns the ledger's clock reading.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// updatePoll runs read, mutate, conditional write. mutate sees a fresh copy
// of the poll on every attempt, so all poll checks are repeated after a
// conflict. Only conflicts are retried.
func (l *Ledger) updatePoll(ctx context.Context, pollID string, mutate func(*models.Poll) error) error {
	if pollID == "" {
		return NewError(ErrNotFound, MsgPollNotFound)
	}

	err := retry.Do(
		func() error {
			poll, version, err := l.repo.GetPoll(ctx, pollID)
			if err != nil {
				return FromStore(err, MsgPollNotFound)
			}
			if err := mutate(&poll); err != nil {
				return err
			}
			if _, err := l.repo.UpdatePoll(ctx, poll, version); err != nil {
				err = FromStore(err, MsgPollNotFound)
				if errors.Is(err, ErrConflict) {
					l.metrics.IncWriteConflicts()
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(l.attempts),
		retry.Delay(l.delay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(l.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrConflict)
		}),
		retry.OnRetry(func(n uint, err error) {
			l.metrics.IncWriteRetries()
			slog.Debug("retrying poll write",
				"poll_id", pollID,
				"attempt", n+1,
				"error", err)
		}),
	)

	switch {
	case err == nil, errors.Is(err, errUnchanged):
		return nil
	case ctx.Err() != nil && !errors.As(err, new(*Error)):
		return &Error{Kind: ErrTransient, Message: MsgStoreUnavailable, Err: err}
	}
	return err
}

func (l *Ledger) user(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, NewError(ErrNotFound, MsgUserNotFound)
	}
	u, _, err := l.repo.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, FromStore(err, MsgUserNotFound)
	}
	return u, nil
}

func (l *Ledger) poll(ctx context.Context, pollID string) (models.Poll, error) {
	if pollID == "" {
		return models.Poll{}, NewError(ErrNotFound, MsgPollNotFound)
	}
	p, _, err := l.repo.GetPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, FromStore(err, MsgPollNotFound)
	}
	return p, nil
}

func (l *Ledger) requireAdmin(ctx context.Context, actorID string) (models.User, error) {
	u, err := l.user(ctx, actorID)
	if err != nil {
		return models.User{}, err
	}
	if err := CheckAdmin(u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// visiblePoll hides unpublished polls from everyone but administrators.
func (l *Ledger) visiblePoll(ctx context.Context, pollID, viewerID string) (models.Poll, models.User, error) {
	viewer, err := l.user(ctx, viewerID)
	if err != nil {
		return models.Poll{}, models.User{}, err
	}
	poll, err := l.poll(ctx, pollID)
	if err != nil {
		return models.Poll{}, models.User{}, err
	}
	if viewer.Role != models.RoleAdmin && poll.Visibility != models.VisibilityPublic {
		return models.Poll{}, models.User{}, NewError(ErrNotFound, MsgPollNotFound)
	}
	return poll, viewer, nil
}
