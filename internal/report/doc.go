// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report turns backend report payloads into files and local
// summaries. The backend owns the course-wide math; this package only
// re-derives per-student numbers when a view has raw grades but no
// report, and renders CSV and XLSX exports.
package report
