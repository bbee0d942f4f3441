// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/models"
)

// CreatePoll stores a new active poll with zeroed counts.
func (l *Ledger) CreatePoll(ctx context.Context, actorID string, req models.CreatePollRequest) (models.Poll, error) {
	if _, err := l.requireAdmin(ctx, actorID); err != nil {
		return models.Poll{}, err
	}

	question, texts, err := validatePollInput(req.Question, req.Choices)
	if err != nil {
		return models.Poll{}, err
	}
	if req.Deadline.IsZero() {
		return models.Poll{}, invalidInput("deadline is required")
	}
	now := l.now()
	if !req.Deadline.After(now) {
		return models.Poll{}, invalidInput("deadline must be in the future")
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !models.IsValidVisibility(visibility) {
		return models.Poll{}, invalidInput("visibility must be public, private or draft")
	}

	poll := models.Poll{
		ID:            auth.NewID(),
		Question:      question,
		Description:   strings.TrimSpace(req.Description),
		Choices:       newChoices(texts),
		Deadline:      req.Deadline.UTC(),
		Visibility:    visibility,
		Status:        models.StatusActive,
		Voters:        []models.VoteRecord{},
		CreatedAt:     now.UTC(),
		CreatedBy:     actorID,
		SchemaVersion: models.SchemaVersion,
	}
	if err := l.repo.CreatePoll(ctx, poll); err != nil {
		return models.Poll{}, FromStore(err, MsgPollNotFound)
	}

	l.metrics.IncPollsCreated()
	slog.Info("poll created",
		"poll_id", poll.ID,
		"user_id", actorID,
		"choices", len(poll.Choices))
	l.audit.Record(ctx, actorID, audit.ActionCreatePoll, map[string]string{
		"pollId":   poll.ID,
		"question": poll.Question,
	})
	return poll, nil
}

// EditPoll replaces the editable fields of a poll. When the list of choice
// texts changes the choices get new ids and every vote is discarded. Moving
// the deadline into the future reopens a closed poll unless a status is
// given explicitly.
func (l *Ledger) EditPoll(ctx context.Context, actorID, pollID string, req models.EditPollRequest) (models.Poll, error) {
	if _, err := l.requireAdmin(ctx, actorID); err != nil {
		return models.Poll{}, err
	}

	question, texts, err := validatePollInput(req.Question, req.Choices)
	if err != nil {
		return models.Poll{}, err
	}
	if req.Deadline.IsZero() {
		return models.Poll{}, invalidInput("deadline is required")
	}
	if !models.IsValidVisibility(req.Visibility) {
		return models.Poll{}, invalidInput("visibility must be public, private or draft")
	}
	if req.Status != "" && req.Status != models.StatusActive && req.Status != models.StatusClosed {
		return models.Poll{}, invalidInput("status must be active or closed")
	}

	var updated models.Poll
	reset := false
	err = l.updatePoll(ctx, pollID, func(p *models.Poll) error {
		reset = false
		if !sameChoiceTexts(p.Choices, texts) {
			p.Choices = newChoices(texts)
			p.Voters = []models.VoteRecord{}
			reset = true
		}
		deadline := req.Deadline.UTC()
		switch {
		case req.Status != "":
			p.Status = req.Status
		case !deadline.Equal(p.Deadline) && deadline.After(l.now()):
			p.Status = models.StatusActive
		}
		p.Question = question
		p.Description = strings.TrimSpace(req.Description)
		p.Deadline = deadline
		p.Visibility = req.Visibility
		updated = *p
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	slog.Info("poll updated",
		"poll_id", pollID,
		"user_id", actorID,
		"votes_reset", reset)
	l.audit.Record(ctx, actorID, audit.ActionUpdatePoll, map[string]string{
		"pollId":     pollID,
		"votesReset": strconv.FormatBool(reset),
	})
	return updated, nil
}

// DeletePoll removes a poll and its votes.
func (l *Ledger) DeletePoll(ctx context.Context, actorID, pollID string) error {
	if _, err := l.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if pollID == "" {
		return NewError(ErrNotFound, MsgPollNotFound)
	}
	if err := l.repo.DeletePoll(ctx, pollID); err != nil {
		return FromStore(err, MsgPollNotFound)
	}

	slog.Info("poll deleted", "poll_id", pollID, "user_id", actorID)
	l.audit.Record(ctx, actorID, audit.ActionDeletePoll, map[string]string{"pollId": pollID})
	return nil
}

// SetVisibility changes who can see and vote on a poll.
func (l *Ledger) SetVisibility(ctx context.Context, actorID, pollID, visibility string) (models.Poll, error) {
	if !models.IsValidVisibility(visibility) {
		return models.Poll{}, invalidInput("visibility must be public, private or draft")
	}
	return l.changeVisibility(ctx, actorID, pollID, func(string) string { return visibility })
}

// ToggleVisibility publishes an unpublished poll and unpublishes a public
// one to draft.
func (l *Ledger) ToggleVisibility(ctx context.Context, actorID, pollID string) (models.Poll, error) {
	return l.changeVisibility(ctx, actorID, pollID, func(current string) string {
		if current == models.VisibilityPublic {
			return models.VisibilityDraft
		}
		return models.VisibilityPublic
	})
}

func (l *Ledger) changeVisibility(ctx context.Context, actorID, pollID string, next func(string) string) (models.Poll, error) {
	if _, err := l.requireAdmin(ctx, actorID); err != nil {
		return models.Poll{}, err
	}

	var updated models.Poll
	err := l.updatePoll(ctx, pollID, func(p *models.Poll) error {
		v := next(p.Visibility)
		updated = *p
		if v == p.Visibility {
			return errUnchanged
		}
		p.Visibility = v
		updated = *p
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	l.audit.Record(ctx, actorID, audit.ActionSetVisibility, map[string]string{
		"pollId":     pollID,
		"visibility": updated.Visibility,
	})
	return updated, nil
}

// Stats summarizes engagement across every poll. Engagement rows are
// ordered by vote count, most voted first.
func (l *Ledger) Stats(ctx context.Context, actorID string) (models.PollStats, error) {
	if _, err := l.requireAdmin(ctx, actorID); err != nil {
		return models.PollStats{}, err
	}
	polls, err := l.repo.QueryPolls(ctx, allPollsQuery())
	if err != nil {
		return models.PollStats{}, FromStore(err, MsgPollNotFound)
	}
	return pollStats(polls, l.now()), nil
}

func pollStats(polls []models.Poll, now time.Time) models.PollStats {
	stats := models.PollStats{
		TotalPolls: len(polls),
		Engagement: make([]models.PollEngagement, 0, len(polls)),
	}
	for _, p := range polls {
		votes := Tally(p).TotalVotes
		stats.TotalVotes += votes
		if PollState(p, now) == models.StateOpen {
			stats.ActivePolls++
		}
		stats.Engagement = append(stats.Engagement, models.PollEngagement{
			PollID:     p.ID,
			Question:   p.Question,
			TotalVotes: votes,
			CreatedAt:  p.CreatedAt,
		})
	}
	if stats.TotalPolls > 0 {
		stats.AverageVotesPerPoll = float64(stats.TotalVotes) / float64(stats.TotalPolls)
	}
	sort.SliceStable(stats.Engagement, func(i, j int) bool {
		return stats.Engagement[i].TotalVotes > stats.Engagement[j].TotalVotes
	})
	return stats
}

func validatePollInput(question string, choices []string) (string, []string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, invalidInput("question is required")
	}
	if len(choices) < models.MinChoices || len(choices) > models.MaxChoices {
		return "", nil, invalidInput(fmt.Sprintf("a poll needs between %d and %d choices", models.MinChoices, models.MaxChoices))
	}

	texts := make([]string, len(choices))
	seen := make(map[string]bool, len(choices))
	for i, c := range choices {
		c = strings.TrimSpace(c)
		if c == "" {
			return "", nil, invalidInput("choices cannot be empty")
		}
		key := strings.ToLower(c)
		if seen[key] {
			return "", nil, invalidInput(fmt.Sprintf("duplicate choice %q", c))
		}
		seen[key] = true
		texts[i] = c
	}
	return question, texts, nil
}

func newChoices(texts []string) []models.Choice {
	choices := make([]models.Choice, len(texts))
	for i, t := range texts {
		choices[i] = models.Choice{ID: auth.NewID(), Text: t}
	}
	return choices
}

func sameChoiceTexts(choices []models.Choice, texts []string) bool {
	if len(choices) != len(texts) {
		return false
	}
	for i, c := range choices {
		if c.Text != texts[i] {
			return false
		}
	}
	return true
}
