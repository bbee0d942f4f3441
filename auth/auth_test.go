// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewID() = %q is not a uuid: %v", id, err)
	}

	// Test randomness - two IDs should be different
	if NewID() == NewID() {
		t.Error("NewID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateSessionToken(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		salt   string
	}{
		{"standard", "user123", "secret-salt"},
		{"uuid user", "6f1c1f7e-2a55-4c8e-9a0b-1c2d3e4f5a6b", "salt"},
		{"dotted user id", "first.last", "salt"},
		{"empty salt", "user456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := GenerateSessionToken(tt.userID, tt.salt)

			if !strings.HasPrefix(token, tt.userID+".") {
				t.Errorf("GenerateSessionToken() = %q, want prefix %q", token, tt.userID+".")
			}

			// Should be deterministic
			if token != GenerateSessionToken(tt.userID, tt.salt) {
				t.Error("GenerateSessionToken() is not deterministic")
			}

			// URL-safe, no padding
			if strings.ContainsAny(token, "+/=") {
				t.Errorf("GenerateSessionToken() contains non URL-safe chars: %s", token)
			}

			got, err := ParseSessionToken(token, tt.salt)
			if err != nil {
				t.Fatalf("ParseSessionToken() error = %v", err)
			}
			if got != tt.userID {
				t.Errorf("ParseSessionToken() = %q, want %q", got, tt.userID)
			}
		})
	}
}

func TestParseSessionToken(t *testing.T) {
	salt := "test-salt"
	valid := GenerateSessionToken("alice", salt)

	tests := []struct {
		name    string
		token   string
		salt    string
		wantErr error
	}{
		{"valid", valid, salt, nil},
		{"wrong salt", valid, "other-salt", ErrUnauthenticated},
		{"tampered user", "mallory" + valid[len("alice"):], salt, ErrUnauthenticated},
		{"no separator", "alice", salt, ErrInvalidToken},
		{"empty signature", "alice.", salt, ErrInvalidToken},
		{"empty user", "." + strings.SplitN(valid, ".", 2)[1], salt, ErrInvalidToken},
		{"empty", "", salt, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessionToken(tt.token, tt.salt)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseSessionToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenAuthenticator(t *testing.T) {
	a := NewTokenAuthenticator("salt")
	ctx := context.Background()

	uid, err := a.Authenticate(ctx, a.IssueToken("bob"))
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if uid != "bob" {
		t.Errorf("Authenticate() = %q, want bob", uid)
	}

	for _, token := range []string{"", "bob", "bob.forged", GenerateSessionToken("bob", "other")} {
		if _, err := a.Authenticate(ctx, token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Authenticate(%q) error = %v, want ErrUnauthenticated", token, err)
		}
	}
}
