// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the domain types exchanged with the gradebook backend.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// ROLES
// =============================================================================

// Role is the closed set of account roles the backend knows about.
// All role branching in the client goes through this type so that adding
// a third role is a localized change.
type Role int

const (
	RoleUnknown Role = iota
	RoleTeacher
	RoleStudent
)

// Wire values for Role.
const (
	roleTeacherWire = "teacher"
	roleStudentWire = "student"
)

// ParseRole converts a backend role string into a Role.
// Unrecognized values map to RoleUnknown rather than an error: the
// session hydration path treats them as "no valid session".
func ParseRole(s string) Role {
	switch s {
	case roleTeacherWire:
		return RoleTeacher
	case roleStudentWire:
		return RoleStudent
	default:
		return RoleUnknown
	}
}

// String returns the wire value for the role.
func (r Role) String() string {
	switch r {
	case RoleTeacher:
		return roleTeacherWire
	case RoleStudent:
		return roleStudentWire
	default:
		return "unknown"
	}
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// MarshalJSON serializes the role as its wire string.
func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal unknown role %d", int(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON parses the wire string into a Role.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

// =============================================================================
// USERS
// =============================================================================

// User is an account record as returned by the backend.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// LoginRequest is the credential payload sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the successful login response: a bearer token plus
// the authenticated user's profile.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

// Assignment is a graded task created by a teacher.
type Assignment struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	MaxScore    float64    `json:"max_score"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedBy   int        `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AssignmentCreate is the payload for creating an assignment.
type AssignmentCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	MaxScore    float64    `json:"max_score"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// AssignmentUpdate is the payload for a partial assignment update.
// Nil fields are left unchanged by the backend.
type AssignmentUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	MaxScore    *float64   `json:"max_score,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// =============================================================================
// GRADES
// =============================================================================

// Grade is a score a student received for an assignment.
type Grade struct {
	ID           int        `json:"id"`
	AssignmentID int        `json:"assignment_id"`
	StudentID    int        `json:"student_id"`
	Score        float64    `json:"score"`
	Comment      string     `json:"comment,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

// GradeDetails is a grade joined with its assignment and student, as
// returned by grade listing endpoints.
type GradeDetails struct {
	Grade
	Assignment Assignment `json:"assignment"`
	Student    User       `json:"student"`
}

// GradeCreate is the payload for recording a grade.
type GradeCreate struct {
	AssignmentID int     `json:"assignment_id"`
	StudentID    int     `json:"student_id"`
	Score        float64 `json:"score"`
	Comment      string  `json:"comment,omitempty"`
}

// GradeUpdate is the payload for a partial grade update.
type GradeUpdate struct {
	Score   *float64 `json:"score,omitempty"`
	Comment *string  `json:"comment,omitempty"`
}

// GradeFilter narrows grade listing. Zero values mean "no filter".
// The backend already scopes students to their own grades; the filter
// only matters for teachers.
type GradeFilter struct {
	StudentID    int
	AssignmentID int
}

// =============================================================================
// REPORTS
// =============================================================================

// StudentReport summarizes one student's standing across the course.
type StudentReport struct {
	Student              User           `json:"student"`
	TotalAssignments     int            `json:"total_assignments"`
	CompletedAssignments int            `json:"completed_assignments"`
	AverageScore         float64        `json:"average_score"`
	Grades               []GradeDetails `json:"grades"`
}

// CourseReport is the course-wide report for teachers.
type CourseReport struct {
	TotalStudents    int             `json:"total_students"`
	TotalAssignments int             `json:"total_assignments"`
	AverageScore     float64         `json:"average_score"`
	StudentReports   []StudentReport `json:"student_reports"`
}
