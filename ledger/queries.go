// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/danielhkuo/pollbooth/docstore"
	"github.com/danielhkuo/pollbooth/models"
)

// DefaultActiveLimit caps ActivePolls when no limit is given.
const DefaultActiveLimit = 50

func allPollsQuery() docstore.Query {
	return docstore.Query{OrderBy: "createdAt", Descending: true}
}

// ActivePolls lists public, active polls whose deadline is still ahead,
// newest first.
func (l *Ledger) ActivePolls(ctx context.Context, limit int) ([]models.Poll, error) {
	if limit <= 0 {
		limit = DefaultActiveLimit
	}
	q := docstore.Query{
		Filters: []docstore.Filter{
			{Path: "visibility", Op: docstore.OpEqual, Value: models.VisibilityPublic},
			{Path: "status", Op: docstore.OpEqual, Value: models.StatusActive},
			{Path: "deadline", Op: docstore.OpGreater, Value: l.now()},
		},
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      limit,
	}
	polls, err := l.repo.QueryPolls(ctx, q)
	if err != nil {
		return nil, FromStore(err, MsgPollNotFound)
	}
	return withoutVoters(polls), nil
}

// PollsCreatedBy lists every poll created by userID, newest first.
func (l *Ledger) PollsCreatedBy(ctx context.Context, actorID, userID string) ([]models.Poll, error) {
	if _, err := l.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	q := docstore.Where("createdBy", docstore.OpEqual, userID)
	q.OrderBy = "createdAt"
	q.Descending = true
	polls, err := l.repo.QueryPolls(ctx, q)
	if err != nil {
		return nil, FromStore(err, MsgPollNotFound)
	}
	return polls, nil
}

// SearchPolls matches term case-insensitively against the question and
// description of public polls.
func (l *Ledger) SearchPolls(ctx context.Context, term string) ([]models.Poll, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, invalidInput("search term is required")
	}
	q := docstore.Where("visibility", docstore.OpEqual, models.VisibilityPublic)
	q.OrderBy = "createdAt"
	q.Descending = true
	polls, err := l.repo.QueryPolls(ctx, q)
	if err != nil {
		return nil, FromStore(err, MsgPollNotFound)
	}

	matched := make([]models.Poll, 0)
	for _, p := range polls {
		if strings.Contains(strings.ToLower(p.Question), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			matched = append(matched, p)
		}
	}
	return withoutVoters(matched), nil
}

// VotingHistory lists the polls userID voted on with the choice they made,
// most recent vote first.
func (l *Ledger) VotingHistory(ctx context.Context, userID string) ([]models.VoteHistoryEntry, error) {
	if _, err := l.user(ctx, userID); err != nil {
		return nil, err
	}
	polls, err := l.repo.QueryPolls(ctx, allPollsQuery())
	if err != nil {
		return nil, FromStore(err, MsgPollNotFound)
	}

	history := make([]models.VoteHistoryEntry, 0)
	for _, p := range polls {
		v, ok := voteOf(p, userID)
		if !ok {
			continue
		}
		entry := models.VoteHistoryEntry{
			PollID:   p.ID,
			Question: p.Question,
			ChoiceID: v.ChoiceID,
			VotedAt:  v.VotedAt,
		}
		if i := choiceIndex(p, v.ChoiceID); i >= 0 {
			entry.ChoiceText = p.Choices[i].Text
		}
		history = append(history, entry)
	}
	sortHistory(history)
	return history, nil
}

func sortHistory(h []models.VoteHistoryEntry) {
	sort.SliceStable(h, func(i, j int) bool {
		return h[i].VotedAt.After(h[j].VotedAt)
	})
}

func withoutVoters(polls []models.Poll) []models.Poll {
	for i := range polls {
		polls[i].Voters = nil
	}
	return polls
}
