// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity resolution and token utilities.

# Authenticators

An Authenticator turns the bearer credential on a request into a user id:

	uid, err := authenticator.Authenticate(ctx, token)

Two implementations exist:

  - TokenAuthenticator: HMAC-signed session tokens minted at registration
  - FirebaseAuthenticator: Firebase ID tokens verified with the Admin SDK

The user's role and active flag are not part of the credential. They are
read from the users collection on every vote, so a demoted or deactivated
user loses access immediately.

# Session Tokens

Session tokens use HMAC-SHA256 over the user id:

	token := auth.GenerateSessionToken(userID, salt)
	userID, err := auth.ParseSessionToken(token, salt)

The token is "<userID>.<signature>" with a URL-safe base64 signature
without padding. Since it's deterministic, validation needs no storage.

# ID Generation

Random uuid identifiers for documents:

	id := auth.NewID()
*/
package auth
