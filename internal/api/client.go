// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/session"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gradebook client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://localhost:8000).
	// All endpoint paths are appended under <BaseURL>/api.
	BaseURL string

	// Timeout for requests (default: 30s)
	Timeout time.Duration

	// RateLimit is the maximum requests per second (default: 10).
	// The backend is shared by a whole course; a runaway refresh loop
	// must not become a denial of service.
	RateLimit float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://localhost:8000",
		Timeout:   30 * time.Second,
		RateLimit: 10,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles all communication with the gradebook backend.
//
// The bearer token is read from the session store at request time, not
// cached at construction, so a login or logout is visible to the very
// next request. The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	store      *session.Store
	limiter    *rate.Limiter

	// onInvalidated fires when a 401 response actually transitioned the
	// session from authenticated to anonymous. It fires at most once
	// per session: concurrent failures race on store.Clear and only the
	// winner signals.
	onInvalidated func()
}

// NewClient creates a client with default configuration.
func NewClient(store *session.Store) *Client {
	return NewClientWithConfig(store, DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(store *session.Store, config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		store:      store,
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimit), int(config.RateLimit)),
	}
}

// SetInvalidationHandler registers the forced-logout signal handler.
// Navigation stays the router's job: the client only reports that the
// session died, it does not decide where the user goes.
func (c *Client) SetInvalidationHandler(fn func()) {
	c.onInvalidated = fn
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// errorPayload is the backend's error body shape.
type errorPayload struct {
	Detail string `json:"detail"`
}

// do performs one JSON request/response cycle. out may be nil for
// endpoints whose response body the caller does not need.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "request canceled while rate limited", Cause: err}
	}

	endpoint := c.config.BaseURL + "/api" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Token read fresh per request; anonymous requests go out bare.
	if snap := c.store.Current(); snap.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+snap.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleUnauthorized(resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
		}
	}
	return nil
}

// handleUnauthorized implements the forced-logout contract: the session
// is cleared, the invalidation signal fires if (and only if) this call
// was the one that killed the session, and the caller still sees the
// original rejection.
func (c *Client) handleUnauthorized(resp *http.Response) error {
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if c.store.Clear() && c.onInvalidated != nil {
		c.onInvalidated()
	}

	if payload.Detail != "" {
		return &ClientError{Type: ErrTypeUnauthorized, Message: payload.Detail, StatusCode: resp.StatusCode}
	}
	return ErrUnauthorized
}

// decodeFailure turns a non-2xx, non-401 response into a typed error,
// preserving the backend's detail message when it sent one.
func decodeFailure(resp *http.Response) error {
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	msg := payload.Detail
	errType := ErrTypeRejected
	switch resp.StatusCode {
	case http.StatusForbidden:
		errType = ErrTypeForbidden
		if msg == "" {
			msg = "access denied"
		}
	case http.StatusNotFound:
		errType = ErrTypeNotFound
		if msg == "" {
			msg = "not found"
		}
	default:
		if msg == "" {
			errType = ErrTypeInvalidResponse
			msg = "request failed: " + resp.Status
		}
	}
	return &ClientError{Type: errType, Message: msg, StatusCode: resp.StatusCode}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login exchanges credentials for a token and profile. It does not
// touch the session store; that is the auth gateway's decision. A 401
// here means bad credentials, and since the requester is anonymous the
// forced-logout path is a no-op.
func (c *Client) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	var out model.TokenResponse
	body := model.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// USERS
// =============================================================================

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists all users, optionally filtered by role.
func (c *Client) Users(ctx context.Context, role model.Role) ([]model.User, error) {
	var query url.Values
	if role.Valid() {
		query = url.Values{"role": {role.String()}}
	}
	var out []model.User
	if err := c.do(ctx, http.MethodGet, "/users/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Students lists all student accounts.
func (c *Client) Students(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, http.MethodGet, "/users/students", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserByID fetches one user.
func (c *Client) UserByID(ctx context.Context, id int) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.Itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

// Assignments lists all assignments.
func (c *Client) Assignments(ctx context.Context) ([]model.Assignment, error) {
	var out []model.Assignment
	if err := c.do(ctx, http.MethodGet, "/assignments/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Assignment fetches one assignment.
func (c *Client) Assignment(ctx context.Context, id int) (*model.Assignment, error) {
	var out model.Assignment
	if err := c.do(ctx, http.MethodGet, "/assignments/"+strconv.Itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAssignment creates an assignment (teacher only, enforced
// server-side).
func (c *Client) CreateAssignment(ctx context.Context, req model.AssignmentCreate) (*model.Assignment, error) {
	var out model.Assignment
	if err := c.do(ctx, http.MethodPost, "/assignments/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAssignment applies a partial update to an assignment.
func (c *Client) UpdateAssignment(ctx context.Context, id int, req model.AssignmentUpdate) (*model.Assignment, error) {
	var out model.Assignment
	if err := c.do(ctx, http.MethodPut, "/assignments/"+strconv.Itoa(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAssignment removes an assignment.
func (c *Client) DeleteAssignment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/assignments/"+strconv.Itoa(id), nil, nil, nil)
}

// =============================================================================
// GRADES
// =============================================================================

// Grades lists grades with optional filters. The backend scopes
// students to their own grades regardless of the filter.
func (c *Client) Grades(ctx context.Context, filter model.GradeFilter) ([]model.GradeDetails, error) {
	var query url.Values
	if filter.StudentID != 0 || filter.AssignmentID != 0 {
		query = url.Values{}
		if filter.StudentID != 0 {
			query.Set("student_id", strconv.Itoa(filter.StudentID))
		}
		if filter.AssignmentID != 0 {
			query.Set("assignment_id", strconv.Itoa(filter.AssignmentID))
		}
	}
	var out []model.GradeDetails
	if err := c.do(ctx, http.MethodGet, "/grades/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Grade fetches one grade.
func (c *Client) Grade(ctx context.Context, id int) (*model.GradeDetails, error) {
	var out model.GradeDetails
	if err := c.do(ctx, http.MethodGet, "/grades/"+strconv.Itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGrade records a grade (teacher only, enforced server-side).
func (c *Client) CreateGrade(ctx context.Context, req model.GradeCreate) (*model.Grade, error) {
	var out model.Grade
	if err := c.do(ctx, http.MethodPost, "/grades/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGrade applies a partial update to a grade.
func (c *Client) UpdateGrade(ctx context.Context, id int, req model.GradeUpdate) (*model.Grade, error) {
	var out model.Grade
	if err := c.do(ctx, http.MethodPut, "/grades/"+strconv.Itoa(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGrade removes a grade.
func (c *Client) DeleteGrade(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/grades/"+strconv.Itoa(id), nil, nil, nil)
}

// =============================================================================
// REPORTS
// =============================================================================

// StudentReport fetches the report for one student.
func (c *Client) StudentReport(ctx context.Context, studentID int) (*model.StudentReport, error) {
	var out model.StudentReport
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reports/student/%d", studentID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CourseReport fetches the course-wide report (teacher only).
func (c *Client) CourseReport(ctx context.Context) (*model.CourseReport, error) {
	var out model.CourseReport
	if err := c.do(ctx, http.MethodGet, "/reports/course", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
