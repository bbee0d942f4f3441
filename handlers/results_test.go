// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/testutil"
)

func TestGetResults(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	for _, id := range []string{"v1", "v2", "v3"} {
		testutil.CreateTestUser(t, env, id, models.RoleVoter)
	}
	handler := NewResultsHandler(env.Ledger)

	poll := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic)
	ctx := context.Background()
	for id, choice := range map[string]string{"v1": "c0", "v2": "c0", "v3": "c1"} {
		if _, err := env.Ledger.CastVote(ctx, poll.ID, choice, id, ""); err != nil {
			t.Fatal(err)
		}
	}

	req := testutil.AsUser(testutil.MakeRequest("GET", "/polls/"+poll.ID+"/results", nil, nil), "v1")
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Tally.TotalVotes != 3 {
		t.Errorf("Expected 3 votes, got %d", resp.Tally.TotalVotes)
	}
	if len(resp.Tally.Choices) != 2 {
		t.Fatalf("Expected 2 choices, got %d", len(resp.Tally.Choices))
	}
	if resp.Tally.Choices[0].Votes != 2 || resp.Tally.Choices[1].Votes != 1 {
		t.Errorf("Unexpected counts: %+v", resp.Tally.Choices)
	}
	if p := resp.Tally.Choices[0].Percentage; p < 66.6 || p > 66.7 {
		t.Errorf("Expected ~66.67%%, got %f", p)
	}
	if resp.State != models.StateOpen {
		t.Errorf("Expected OPEN, got %s", resp.State)
	}
	if resp.ClosesIn != "1 hour from now" {
		t.Errorf("Expected closes_in '1 hour from now', got %q", resp.ClosesIn)
	}
}

func TestGetResults_Empty(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	handler := NewResultsHandler(env.Ledger)
	poll := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic, "Yes", "No", "Maybe")

	req := testutil.AsUser(testutil.MakeRequest("GET", "/polls/"+poll.ID+"/results", nil, nil), "admin")
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Tally.TotalVotes != 0 {
		t.Errorf("Expected no votes, got %d", resp.Tally.TotalVotes)
	}
	for _, c := range resp.Tally.Choices {
		if c.Percentage != 0 {
			t.Errorf("Expected 0%% for %s, got %f", c.Text, c.Percentage)
		}
	}
}

func TestGetResults_Access(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, env, "voter", models.RoleVoter)
	handler := NewResultsHandler(env.Ledger)
	draft := testutil.CreateTestPoll(t, env, "admin", models.VisibilityDraft)

	testCases := []struct {
		name           string
		pollID         string
		user           string
		expectedStatus int
	}{
		{"draft hidden from voter", draft.ID, "voter", http.StatusNotFound},
		{"draft visible to admin", draft.ID, "admin", http.StatusOK},
		{"missing poll", "nope", "admin", http.StatusNotFound},
		{"unknown viewer", draft.ID, "ghost", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.AsUser(testutil.MakeRequest("GET", "/polls/"+tc.pollID+"/results", nil, nil), tc.user)
			req.SetPathValue("id", tc.pollID)
			w := httptest.NewRecorder()

			handler.GetResults(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestClosesIn(t *testing.T) {
	now := testutil.Now

	testCases := []struct {
		name     string
		deadline time.Time
		state    string
		expected string
	}{
		{"open", now.Add(2 * time.Hour), models.StateOpen, "2 hours from now"},
		{"closed early", now.Add(2 * time.Hour), models.StateClosed, "closed"},
		{"deadline passed", now.Add(-3 * 24 * time.Hour), models.StateClosed, "closed 3 days ago"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := closesIn(models.Poll{Deadline: tc.deadline}, tc.state, now)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
