// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token format")
)

// Authenticator turns a bearer credential into the caller's user id.
// Role and activity are looked up from the users collection afterwards.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// NewID returns a random identifier for polls, choices and audit entries
func NewID() string {
	return uuid.NewString()
}

// GenerateSessionToken creates an HMAC-signed session token for a user.
// The token is "<userID>.<signature>" and is verifiable without storage.
func GenerateSessionToken(userID, salt string) string {
	return userID + "." + sign(userID, salt)
}

// ParseSessionToken checks the signature and returns the user id
func ParseSessionToken(token, salt string) (string, error) {
	i := strings.LastIndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}
	userID, sig := token[:i], token[i+1:]

	expected := sign(userID, salt)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

func sign(userID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(userID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// TokenAuthenticator accepts session tokens minted by GenerateSessionToken
type TokenAuthenticator struct {
	salt string
}

func NewTokenAuthenticator(salt string) *TokenAuthenticator {
	return &TokenAuthenticator{salt: salt}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	userID, err := ParseSessionToken(token, a.salt)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// IssueToken mints a session token for a newly registered user.
func (a *TokenAuthenticator) IssueToken(userID string) string {
	return GenerateSessionToken(userID, a.salt)
}
