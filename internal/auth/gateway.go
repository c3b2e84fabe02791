// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/session"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

var (
	// ErrMissingCredentials means email or password was empty. The
	// request never reaches the network.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrMissingProfile means a registration field was empty.
	ErrMissingProfile = errors.New("email, password and full name are required")

	// ErrInvalidRole means a registration asked for a role the system
	// does not know.
	ErrInvalidRole = errors.New("role must be teacher or student")
)

// =============================================================================
// GATEWAY
// =============================================================================

// Gateway owns the login, registration and logout flows.
type Gateway struct {
	client *api.Client
	store  *session.Store
}

// NewGateway wires the gateway to its client and store.
func NewGateway(client *api.Client, store *session.Store) *Gateway {
	return &Gateway{client: client, store: store}
}

// Login authenticates the user and, on success, persists the session.
// On any failure the store is untouched; rejected credentials surface
// as the backend's own message via api.Detail.
func (g *Gateway) Login(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, ErrMissingCredentials
	}

	resp, err := g.client.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}

	if resp.AccessToken == "" {
		return model.User{}, errors.New("backend returned an empty token")
	}
	if !resp.User.Role.Valid() {
		return model.User{}, fmt.Errorf("backend returned unknown role %q", resp.User.Role)
	}

	if err := g.store.Set(resp.AccessToken, resp.User); err != nil {
		return model.User{}, fmt.Errorf("failed to persist session: %w", err)
	}
	return resp.User, nil
}

// Register creates a new account. The user is not logged in afterwards;
// they go through the normal login flow with their new credentials.
func (g *Gateway) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return model.User{}, ErrMissingProfile
	}
	if !req.Role.Valid() {
		return model.User{}, ErrInvalidRole
	}

	user, err := g.client.Register(ctx, req)
	if err != nil {
		return model.User{}, err
	}
	return *user, nil
}

// Logout drops the session locally. It reports whether there was a
// session to drop, so callers can skip the goodbye on a double logout.
func (g *Gateway) Logout() bool {
	return g.store.Clear()
}
