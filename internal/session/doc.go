// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the authenticated session: the bearer token and
// the user profile, kept in memory and persisted to disk so a restart
// does not force re-login.
//
// The store is the single writer of session state. Every other
// component either reads snapshots or asks the auth gateway to mutate.
//
// # Invariant
//
// A session is all or nothing: token present if and only if profile
// present. Set writes both files before publishing; Clear removes both;
// Hydrate treats any malformed or half-present pair on disk as "no
// session" and removes the leftovers.
//
// # Storage
//
//   - <dir>/token         bearer token, encrypted at rest by default
//   - <dir>/profile.json  serialized user profile
//   - <dir>/session.key   random key material for the token cipher
//
// where <dir> defaults to ~/.gradebook.
package session
