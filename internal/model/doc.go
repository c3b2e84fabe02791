// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the domain types exchanged with the gradebook
// backend.
//
// All types mirror the backend's JSON contract exactly. The client never
// invents fields: what the backend sends is what these structs hold.
//
// # Key Types
//
//   - User: an account with a closed Role (teacher or student)
//   - Assignment: a graded task created by a teacher
//   - Grade: a score a student received for an assignment
//   - StudentReport / CourseReport: server-computed report payloads
package model
