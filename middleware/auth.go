// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/pollbooth/auth"
)

type userIDKey struct{}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireIdentity resolves the caller through authn and stores the user id
// in the request context. Requests without a valid credential get a 401.
func RequireIdentity(authn auth.Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := authn.Authenticate(r.Context(), BearerToken(r))
		if err != nil {
			slog.Debug("authentication failed", "path", r.URL.Path, "error", err)
			ErrorResponse(w, http.StatusUnauthorized, "sign in to continue")
			return
		}
		next(w, r.WithContext(WithUserID(r.Context(), uid)))
	}
}

func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey{}, uid)
}

// UserID returns the authenticated user id, or "" outside RequireIdentity.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey{}).(string)
	return uid
}
