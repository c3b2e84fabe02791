// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/session"
)

func testStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	store.Hydrate()
	return store
}

func testClient(t *testing.T, store *session.Store, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(store, &ClientConfig{
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		RateLimit: 1000,
	})
}

func authedStore(t *testing.T, token string) *session.Store {
	t.Helper()
	store := testStore(t)
	user := model.User{ID: 7, Email: "teacher@example.com", FullName: "Test Teacher", Role: model.RoleTeacher}
	if err := store.Set(token, user); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return store
}

func TestClient_BearerAttachedFresh(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]model.Assignment{})
	})

	store := authedStore(t, "tok-one")
	client := testClient(t, store, handler)

	_, err := client.Assignments(context.Background())
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if gotAuth != "Bearer tok-one" {
		t.Errorf("Authorization = %q, want Bearer tok-one", gotAuth)
	}

	// A new login must be visible to the next request without
	// rebuilding the client.
	user := store.Current().User
	if err := store.Set("tok-two", user); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := client.Assignments(context.Background()); err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if gotAuth != "Bearer tok-two" {
		t.Errorf("Authorization = %q, want Bearer tok-two", gotAuth)
	}
}

func TestClient_AnonymousRequestHasNoBearer(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.TokenResponse{AccessToken: "t", TokenType: "bearer"})
	})

	client := testClient(t, testStore(t), handler)
	if _, err := client.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("anonymous request carried Authorization = %q", gotAuth)
	}
}

func TestClient_RequestIDSet(t *testing.T) {
	ids := map[string]bool{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[r.Header.Get("X-Request-ID")] = true
		json.NewEncoder(w).Encode([]model.Assignment{})
	})

	client := testClient(t, authedStore(t, "tok"), handler)
	for i := 0; i < 3; i++ {
		if _, err := client.Assignments(context.Background()); err != nil {
			t.Fatalf("Assignments: %v", err)
		}
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 distinct request IDs, got %d", len(ids))
	}
	if ids[""] {
		t.Error("request sent without X-Request-ID")
	}
}

func TestClient_UnauthorizedForcesLogout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	})

	store := authedStore(t, "stale-token")
	client := testClient(t, store, handler)

	var signals int
	client.SetInvalidationHandler(func() { signals++ })

	_, err := client.Grades(context.Background(), model.GradeFilter{})
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if store.Current().Authenticated() {
		t.Error("session still authenticated after 401")
	}
	if signals != 1 {
		t.Errorf("invalidation signals = %d, want 1", signals)
	}
}

func TestClient_ConcurrentUnauthorizedSignalsOnce(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	})

	store := authedStore(t, "stale-token")
	client := testClient(t, store, handler)

	var signals atomic.Int32
	client.SetInvalidationHandler(func() { signals.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Assignments(context.Background())
			require.Error(t, err)
		}()
	}
	close(release)
	wg.Wait()

	require.False(t, store.Current().Authenticated())
	require.EqualValues(t, 1, signals.Load(), "exactly one invalidation signal for two concurrent failures")
}

func TestClient_LoginRejectionLeavesSessionAlone(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
	})

	store := testStore(t)
	client := testClient(t, store, handler)

	var signals int
	client.SetInvalidationHandler(func() { signals++ })

	_, err := client.Login(context.Background(), "teacher@example.com", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if got := Detail(err); got != "Invalid credentials" {
		t.Errorf("Detail = %q, want Invalid credentials", got)
	}
	if signals != 0 {
		t.Errorf("invalidation signaled on anonymous rejection, signals = %d", signals)
	}
}

func TestClient_DetailPropagated(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	})

	client := testClient(t, testStore(t), handler)
	_, err := client.Register(context.Background(), model.RegisterRequest{Email: "dup@example.com"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := Detail(err); got != "Email already registered" {
		t.Errorf("Detail = %q, want backend message", got)
	}
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType ErrorType
	}{
		{"forbidden", http.StatusForbidden, ErrTypeForbidden},
		{"not found", http.StatusNotFound, ErrTypeNotFound},
		{"bad request with detail", http.StatusBadRequest, ErrTypeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"detail": "nope"})
			})
			client := testClient(t, authedStore(t, "tok"), handler)

			_, err := client.Assignment(context.Background(), 1)
			var clientErr *ClientError
			if !errors.As(err, &clientErr) {
				t.Fatalf("expected ClientError, got %v", err)
			}
			if clientErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", clientErr.Type, tt.wantType)
			}
			if clientErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", clientErr.StatusCode, tt.status)
			}
		})
	}
}

func TestClient_ServerDownIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClientWithConfig(testStore(t), &ClientConfig{BaseURL: srv.URL})
	_, err := client.Me(context.Background())
	if !IsUnreachable(err) {
		t.Errorf("expected unreachable error, got %v", err)
	}
}

func TestClient_GradeFilterQuery(t *testing.T) {
	var gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]model.GradeDetails{})
	})

	client := testClient(t, authedStore(t, "tok"), handler)
	_, err := client.Grades(context.Background(), model.GradeFilter{StudentID: 3, AssignmentID: 9})
	if err != nil {
		t.Fatalf("Grades: %v", err)
	}
	if gotQuery != "assignment_id=9&student_id=3" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClient_NonOKOnDeleteSurfaces(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	client := testClient(t, authedStore(t, "tok"), handler)
	if err := client.DeleteAssignment(context.Background(), 12); err != nil {
		t.Errorf("DeleteAssignment: %v", err)
	}
}
