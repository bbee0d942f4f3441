// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *testutil.Env) {
	t.Helper()
	env := testutil.SetupTestEnv(t)
	mux := NewRouter(Services{
		Ledger:   env.Ledger,
		Accounts: env.Accounts,
		Audit:    env.Audit,
		Authn:    env.Authn,
		Metrics:  env.Metrics,
	})
	return mux, env
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	expected := "pollbooth API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/nowhere", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pollbooth_votes_cast_total") {
		t.Error("Expected vote counter in metrics output")
	}
}

// TestRoutesRequireIdentity verifies every signed-in route rejects anonymous
// callers before the handler runs
func TestRoutesRequireIdentity(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/users/me"},
		{"GET", "/users"},
		{"POST", "/users/u1/role"},
		{"POST", "/users/u1/active"},
		{"POST", "/polls"},
		{"GET", "/polls"},
		{"GET", "/polls/p1"},
		{"PUT", "/polls/p1"},
		{"DELETE", "/polls/p1"},
		{"POST", "/polls/p1/visibility"},
		{"POST", "/polls/p1/close"},
		{"POST", "/polls/p1/votes"},
		{"GET", "/polls/p1/results"},
		{"GET", "/me/votes"},
		{"GET", "/admin/stats"},
		{"GET", "/admin/audit"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"GET", "/polls/p1/votes"},
		{"PUT", "/polls/p1/close"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	mux, env := newTestRouter(t)
	token := testutil.CreateTestUser(t, env, "admin", models.RoleAdmin)
	poll := testutil.CreateTestPoll(t, env, "admin", models.VisibilityDraft)

	req := testutil.MakeRequest("GET", "/polls/"+poll.ID, nil, testutil.Bearer(token))
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if view.Poll.ID != poll.ID {
		t.Errorf("Expected poll %s, got %s", poll.ID, view.Poll.ID)
	}
}
