// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package accounts manages registered users: registration, roles and
// whether an account may vote. Errors use the ledger error kinds.
package accounts
