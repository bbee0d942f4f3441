// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollbooth/accounts"
	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/docstore"
	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/metrics"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/models"
	"github.com/danielhkuo/pollbooth/repo"
)

// TestSalt signs session tokens in tests
const TestSalt = "test-session-salt"

// AdminEmail registers as an administrator in every test environment
const AdminEmail = "owner@example.com"

// Now is the fixed clock reading every test service sees
var Now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Env bundles the services behind the HTTP layer, wired to a memory store
type Env struct {
	Store    docstore.Store
	Repo     *repo.Repo
	Audit    *audit.Log
	Ledger   *ledger.Ledger
	Accounts *accounts.Service
	Authn    *auth.TokenAuthenticator
	Metrics  *metrics.MetricService
}

// SetupTestEnv creates a fresh in-memory environment with a fixed clock
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	store := docstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time { return Now }
	r := repo.New(store)
	log := audit.New(r, clock)
	ms := metrics.NewMetricService()

	return &Env{
		Store: store,
		Repo:  r,
		Audit: log,
		Ledger: ledger.New(r,
			ledger.WithClock(clock),
			ledger.WithRetry(20, time.Millisecond),
			ledger.WithAudit(log),
			ledger.WithMetrics(ms)),
		Accounts: accounts.New(r, log, clock, accounts.WithAdminEmails([]string{AdminEmail})),
		Authn:    auth.NewTokenAuthenticator(TestSalt),
		Metrics:  ms,
	}
}

// CreateTestUser stores an active user with the given role and returns a
// session token for it
func CreateTestUser(t *testing.T, env *Env, id, role string) string {
	t.Helper()

	err := env.Repo.CreateUser(context.Background(), models.User{
		ID:            id,
		Email:         id + "@example.com",
		DisplayName:   id,
		Role:          role,
		IsActive:      true,
		CreatedAt:     Now.Add(-24 * time.Hour),
		SchemaVersion: models.SchemaVersion,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return env.Authn.IssueToken(id)
}

// CreateTestPoll stores an active poll closing an hour from Now. Choice ids
// are "c0", "c1", ... in order.
func CreateTestPoll(t *testing.T, env *Env, createdBy, visibility string, choices ...string) models.Poll {
	t.Helper()

	if len(choices) == 0 {
		choices = []string{"Red", "Blue"}
	}
	p := models.Poll{
		ID:            auth.NewID(),
		Question:      "Test poll?",
		Choices:       make([]models.Choice, len(choices)),
		Deadline:      Now.Add(time.Hour),
		Visibility:    visibility,
		Status:        models.StatusActive,
		Voters:        []models.VoteRecord{},
		CreatedAt:     Now.Add(-time.Hour),
		CreatedBy:     createdBy,
		SchemaVersion: models.SchemaVersion,
	}
	for i, text := range choices {
		p.Choices[i] = models.Choice{ID: "c" + string(rune('0'+i)), Text: text}
	}

	if err := env.Repo.CreatePoll(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return p
}

// GetPoll reads a poll straight from the store
func GetPoll(t *testing.T, env *Env, id string) models.Poll {
	t.Helper()
	p, _, err := env.Repo.GetPoll(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to load poll %s: %v", id, err)
	}
	return p
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AsUser attaches an authenticated user id, as RequireIdentity would
func AsUser(req *http.Request, uid string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), uid))
}

// Bearer builds an Authorization header for a session token
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
