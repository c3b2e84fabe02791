// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/session"
)

func newGateway(t *testing.T, handler http.Handler) (*Gateway, *session.Store) {
	t.Helper()
	store, err := session.NewStore(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	store.Hydrate()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClientWithConfig(store, &api.ClientConfig{BaseURL: srv.URL})
	return NewGateway(client, store), store
}

func loginHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode login request: %v", err)
		}
		if req.Email == "teacher@example.com" && req.Password == "teacher123" {
			json.NewEncoder(w).Encode(model.TokenResponse{
				AccessToken: "token-abc",
				TokenType:   "bearer",
				User: model.User{
					ID: 1, Email: req.Email, FullName: "Test Teacher", Role: model.RoleTeacher,
				},
			})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
	})
}

func TestGateway_LoginSuccess(t *testing.T) {
	gw, store := newGateway(t, loginHandler(t))

	user, err := gw.Login(context.Background(), "teacher@example.com", "teacher123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != model.RoleTeacher {
		t.Errorf("role = %v, want teacher", user.Role)
	}

	snap := store.Current()
	if !snap.Authenticated() {
		t.Fatal("store not authenticated after login")
	}
	if snap.Token != "token-abc" {
		t.Errorf("token = %q", snap.Token)
	}
	if snap.User.Email != "teacher@example.com" {
		t.Errorf("profile email = %q", snap.User.Email)
	}
}

func TestGateway_LoginRejectedLeavesStoreAnonymous(t *testing.T) {
	gw, store := newGateway(t, loginHandler(t))

	_, err := gw.Login(context.Background(), "teacher@example.com", "wrong")
	if !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := api.Detail(err); got != "Invalid credentials" {
		t.Errorf("Detail = %q", got)
	}
	if store.Current().Authenticated() {
		t.Error("store authenticated after rejected login")
	}
}

func TestGateway_LoginEmptyFieldsSkipNetwork(t *testing.T) {
	var hits int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ })
	gw, store := newGateway(t, handler)

	tests := []struct {
		name, email, password string
	}{
		{"empty email", "", "pw"},
		{"empty password", "a@b.c", ""},
		{"both empty", "", ""},
		{"whitespace email", "   ", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("err = %v, want ErrMissingCredentials", err)
			}
		})
	}
	if hits != 0 {
		t.Errorf("validation failures reached the network %d times", hits)
	}
	if store.Current().Authenticated() {
		t.Error("store mutated by failed validation")
	}
}

func TestGateway_RegisterDoesNotLogin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode register request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.User{ID: 9, Email: req.Email, FullName: req.FullName, Role: req.Role})
	})
	gw, store := newGateway(t, handler)

	user, err := gw.Register(context.Background(), model.RegisterRequest{
		Email: "new@example.com", Password: "secret1", FullName: "New Student", Role: model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID != 9 {
		t.Errorf("user ID = %d", user.ID)
	}
	if store.Current().Authenticated() {
		t.Error("register must not create a session")
	}
}

func TestGateway_RegisterValidation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("validation failure reached the network")
	})
	gw, _ := newGateway(t, handler)

	_, err := gw.Register(context.Background(), model.RegisterRequest{Email: "a@b.c", Password: "pw"})
	if !errors.Is(err, ErrMissingProfile) {
		t.Errorf("missing full name: err = %v", err)
	}

	_, err = gw.Register(context.Background(), model.RegisterRequest{
		Email: "a@b.c", Password: "pw", FullName: "A B", Role: model.RoleUnknown,
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("unknown role: err = %v", err)
	}
}

func TestGateway_LogoutIdempotent(t *testing.T) {
	gw, store := newGateway(t, loginHandler(t))

	if _, err := gw.Login(context.Background(), "teacher@example.com", "teacher123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !gw.Logout() {
		t.Error("first logout should report a change")
	}
	if gw.Logout() {
		t.Error("second logout should be a no-op")
	}
	if store.Current().Authenticated() {
		t.Error("still authenticated after logout")
	}
}
