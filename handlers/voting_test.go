// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/testutil"
)

func TestCastVote(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, env, "voter", models.RoleVoter)
	testutil.CreateTestUser(t, env, "voted", models.RoleVoter)
	testutil.CreateTestUser(t, env, "inactive", models.RoleVoter)
	if _, err := env.Accounts.SetActive(context.Background(), "admin", "inactive", false); err != nil {
		t.Fatal(err)
	}
	handler := NewVotingHandler(env.Ledger)

	open := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic)
	private := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPrivate)
	closed := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic)
	if err := env.Ledger.ClosePoll(context.Background(), closed.ID, "admin"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Ledger.CastVote(context.Background(), open.ID, "c0", "voted", ""); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name            string
		pollID          string
		user            string
		body            any
		expectedStatus  int
		expectedMessage string
	}{
		{"valid vote", open.ID, "voter", models.CastVoteRequest{ChoiceID: "c1", Reason: "blue is calm"}, http.StatusCreated, ""},
		{"already voted", open.ID, "voted", models.CastVoteRequest{ChoiceID: "c1"}, http.StatusConflict, ledger.MsgAlreadyVoted},
		{"admin cannot vote", open.ID, "admin", models.CastVoteRequest{ChoiceID: "c0"}, http.StatusForbidden, ledger.MsgAdminCannotVote},
		{"inactive user", open.ID, "inactive", models.CastVoteRequest{ChoiceID: "c0"}, http.StatusForbidden, ledger.MsgUserInactive},
		{"unknown user", open.ID, "ghost", models.CastVoteRequest{ChoiceID: "c0"}, http.StatusNotFound, ledger.MsgUserNotFound},
		{"missing poll", "nope", "voter", models.CastVoteRequest{ChoiceID: "c0"}, http.StatusNotFound, ledger.MsgPollNotFound},
		{"private poll", private.ID, "voter", models.CastVoteRequest{ChoiceID: "c0"}, http.StatusForbidden, ledger.MsgPollNotPublic},
		{"closed poll", closed.ID, "voter", models.CastVoteRequest{ChoiceID: "c0"}, http.StatusForbidden, ledger.MsgPollClosed},
		{"inactive user reported before closed poll", closed.ID, "inactive", models.CastVoteRequest{ChoiceID: "zz"}, http.StatusForbidden, ledger.MsgUserInactive},
		{"admin reported before private poll", private.ID, "admin", models.CastVoteRequest{ChoiceID: "zz"}, http.StatusForbidden, ledger.MsgAdminCannotVote},
		{"invalid JSON", open.ID, "voter", "nope", http.StatusBadRequest, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.AsUser(testutil.MakeRequest("POST", "/polls/"+tc.pollID+"/votes", tc.body, nil), tc.user)
			req.SetPathValue("id", tc.pollID)
			w := httptest.NewRecorder()

			handler.CastVote(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedMessage != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Message != tc.expectedMessage {
					t.Errorf("Expected message %q, got %q", tc.expectedMessage, resp.Message)
				}
			}
		})
	}

	poll := testutil.GetPoll(t, env, open.ID)
	if len(poll.Voters) != 2 {
		t.Errorf("Expected 2 voters, got %d", len(poll.Voters))
	}
	if poll.Choices[1].Votes != 1 {
		t.Errorf("Expected 1 vote for Blue, got %d", poll.Choices[1].Votes)
	}
}

func TestCastVote_InvalidChoice(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, env, "voter", models.RoleVoter)
	handler := NewVotingHandler(env.Ledger)
	poll := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic)

	for _, choice := range []string{"zz", "", "1"} {
		req := testutil.AsUser(testutil.MakeRequest("POST", "/polls/"+poll.ID+"/votes", models.CastVoteRequest{ChoiceID: choice}, nil), "voter")
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()

		handler.CastVote(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	}

	if got := testutil.GetPoll(t, env, poll.ID); len(got.Voters) != 0 {
		t.Errorf("Rejected votes must not be stored, got %d voters", len(got.Voters))
	}
}

func TestCastVote_ReasonTooLong(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, env, "voter", models.RoleVoter)
	handler := NewVotingHandler(env.Ledger)
	poll := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic)

	long := make([]byte, maxReasonLength+1)
	for i := range long {
		long[i] = 'x'
	}
	req := testutil.AsUser(testutil.MakeRequest("POST", "/polls/"+poll.ID+"/votes",
		models.CastVoteRequest{ChoiceID: "c0", Reason: string(long)}, nil), "voter")
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()

	handler.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVote_Response(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, env, "voter", models.RoleVoter)
	handler := NewVotingHandler(env.Ledger)
	poll := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic)

	req := testutil.AsUser(testutil.MakeRequest("POST", "/polls/"+poll.ID+"/votes", models.CastVoteRequest{ChoiceID: "c0"}, nil), "voter")
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()

	handler.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.PollID != poll.ID || resp.ChoiceID != "c0" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if !resp.VotedAt.Equal(testutil.Now) {
		t.Errorf("Expected voted_at %v, got %v", testutil.Now, resp.VotedAt)
	}
}

func TestMyVotes(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, env, "voter", models.RoleVoter)
	handler := NewVotingHandler(env.Ledger)

	first := testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic, "Yes", "No")
	testutil.CreateTestPoll(t, env, "admin", models.VisibilityPublic)
	if _, err := env.Ledger.CastVote(context.Background(), first.ID, "c1", "voter", ""); err != nil {
		t.Fatal(err)
	}

	req := testutil.AsUser(testutil.MakeRequest("GET", "/me/votes", nil, nil), "voter")
	w := httptest.NewRecorder()

	handler.MyVotes(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoteHistoryResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Votes) != 1 {
		t.Fatalf("Expected 1 vote, got %d", len(resp.Votes))
	}
	if resp.Votes[0].PollID != first.ID || resp.Votes[0].ChoiceText != "No" {
		t.Errorf("Unexpected history entry: %+v", resp.Votes[0])
	}
	if resp.Votes[0].VotedAt.Sub(testutil.Now) > time.Second {
		t.Errorf("Unexpected voted_at %v", resp.Votes[0].VotedAt)
	}
}
