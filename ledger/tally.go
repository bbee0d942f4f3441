// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "github.com/danielhkuo/pollbooth/models"

// Tally computes per-choice counts and percentages in choice order.
// A poll with no votes reports 0% for every choice.
func Tally(p models.Poll) models.Tally {
	total := 0
	for _, c := range p.Choices {
		total += c.Votes
	}

	results := make([]models.ChoiceResult, len(p.Choices))
	for i, c := range p.Choices {
		var pct float64
		if total > 0 {
			pct = float64(c.Votes) / float64(total) * 100
		}
		results[i] = models.ChoiceResult{
			ChoiceID:   c.ID,
			Text:       c.Text,
			Votes:      c.Votes,
			Percentage: pct,
		}
	}

	return models.Tally{
		PollID:     p.ID,
		TotalVotes: total,
		Choices:    results,
	}
}

// HasVoted reports whether userID has a vote record on p.
func HasVoted(p models.Poll, userID string) bool {
	_, ok := voteOf(p, userID)
	return ok
}

func voteOf(p models.Poll, userID string) (models.VoteRecord, bool) {
	for _, v := range p.Voters {
		if v.UserID == userID {
			return v, true
		}
	}
	return models.VoteRecord{}, false
}
