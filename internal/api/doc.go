// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the gradebook backend.
//
// All backend traffic flows through one Client so the authentication
// contract is enforced uniformly: the bearer token is read fresh from
// the session store on every request, and any 401 response forces the
// session into a logged-out state exactly once, no matter how many
// calls fail concurrently.
//
// The client does not retry, queue or deduplicate. Each call is
// independent and at-most-once from the client's perspective; every
// error other than the authentication failure passes through to the
// caller unmodified.
package api
