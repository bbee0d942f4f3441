// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"log/slog"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthenticator verifies Firebase ID tokens issued to browser
// sessions and returns the token's uid.
type FirebaseAuthenticator struct {
	client *firebaseauth.Client
}

func NewFirebaseAuthenticator(client *firebaseauth.Client) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{client: client}
}

func (a *FirebaseAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	verified, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		slog.Warn("firebase token rejected", "error", err)
		return "", ErrUnauthenticated
	}
	return verified.UID, nil
}
