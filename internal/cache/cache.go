// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache keeps the last successfully fetched backend data on
// disk, so the UI can show something useful while the backend is down
// instead of an empty screen. Entries are scoped per account; a cache
// written by one user is invisible to another.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/gradebook-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMiss means no cached entry exists for that key.
	ErrMiss = errors.New("cache miss")

	ErrDatabaseError = errors.New("cache database error")
)

// =============================================================================
// SNAPSHOT CACHE
// =============================================================================

// Entry kinds. One row per (user, kind).
const (
	kindAssignments  = "assignments"
	kindGrades       = "grades"
	kindCourseReport = "course_report"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	user_id    INTEGER NOT NULL,
	kind       TEXT    NOT NULL,
	payload    TEXT    NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, kind)
);
`

// Cache is a per-user snapshot store backed by SQLite.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// put stores a JSON snapshot, replacing any previous entry.
func (c *Cache) put(userID int, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s snapshot: %w", kind, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO snapshots (user_id, kind, payload, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, kind) DO UPDATE SET
		   payload = excluded.payload, fetched_at = excluded.fetched_at`,
		userID, kind, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// get loads a JSON snapshot into out and returns when it was fetched.
func (c *Cache) get(userID int, kind string, out any) (time.Time, error) {
	var payload string
	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT payload, fetched_at FROM snapshots WHERE user_id = ? AND kind = ?`,
		userID, kind,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		// A corrupt entry reads as a miss; the next fetch overwrites it.
		return time.Time{}, ErrMiss
	}
	return time.Unix(fetchedAt, 0), nil
}

// Purge removes every snapshot belonging to a user. Called on logout so
// the next account on this machine starts clean.
func (c *Cache) Purge(userID int) error {
	if _, err := c.db.Exec(`DELETE FROM snapshots WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// TYPED ACCESSORS
// =============================================================================

// PutAssignments caches an assignment listing.
func (c *Cache) PutAssignments(userID int, assignments []model.Assignment) error {
	return c.put(userID, kindAssignments, assignments)
}

// Assignments returns the cached assignment listing.
func (c *Cache) Assignments(userID int) ([]model.Assignment, time.Time, error) {
	var out []model.Assignment
	at, err := c.get(userID, kindAssignments, &out)
	return out, at, err
}

// PutGrades caches a grade listing.
func (c *Cache) PutGrades(userID int, grades []model.GradeDetails) error {
	return c.put(userID, kindGrades, grades)
}

// Grades returns the cached grade listing.
func (c *Cache) Grades(userID int) ([]model.GradeDetails, time.Time, error) {
	var out []model.GradeDetails
	at, err := c.get(userID, kindGrades, &out)
	return out, at, err
}

// PutCourseReport caches the course report.
func (c *Cache) PutCourseReport(userID int, report *model.CourseReport) error {
	return c.put(userID, kindCourseReport, report)
}

// CourseReport returns the cached course report.
func (c *Cache) CourseReport(userID int) (*model.CourseReport, time.Time, error) {
	var out model.CourseReport
	at, err := c.get(userID, kindCourseReport, &out)
	if err != nil {
		return nil, time.Time{}, err
	}
	return &out, at, nil
}
