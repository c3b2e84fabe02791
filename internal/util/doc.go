// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the gradebook client:
// width-aware string truncation for table cells, numeric formatting for
// scores, and crash-safe file writes used by the session store.
package util
