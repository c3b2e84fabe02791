// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth is the only writer of authenticated sessions. Views
// never touch the session store directly: they call the gateway, and
// the gateway decides whether the store changes.
//
// Login validates locally before any network traffic, so empty
// credentials never leave the machine. A failed login leaves the store
// exactly as it was. Logout is a pure local operation; the backend
// holds no session state worth revoking.
package auth
