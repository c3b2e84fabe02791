// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides which view a navigation request may reach.
//
// Every navigation resolves to exactly one of three outcomes: show a
// loading placeholder (session hydration pending), render the requested
// view, or redirect somewhere else. There is no forbidden state: a
// role mismatch redirects to that role's home view instead of failing.
//
// Resolve is a pure function of (hydration-complete, session snapshot,
// requested route). The router holds no state and no history, so the
// same inputs always produce the same decision.
package router
