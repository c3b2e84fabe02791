// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gradebook-tui/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:       1,
		Email:    "teacher@example.com",
		FullName: "Anna Petrova",
		Role:     model.RoleTeacher,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), true)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestStore_HydrateEmptyDir(t *testing.T) {
	store := newTestStore(t)

	snap := store.Hydrate()
	if snap.Authenticated() {
		t.Error("empty dir should hydrate anonymous")
	}
	if !store.Hydrated() {
		t.Error("Hydrated() should be true after Hydrate")
	}
}

func TestStore_SetThenHydrate(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, true)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	store.Hydrate()

	if err := store.Set("tok-123", testUser()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A second store over the same dir simulates an app restart.
	restarted, err := NewStore(dir, true)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	snap := restarted.Hydrate()

	if !snap.Authenticated() {
		t.Fatal("expected authenticated session after restart")
	}
	if snap.Token != "tok-123" {
		t.Errorf("Token = %q, want tok-123", snap.Token)
	}
	if snap.User.Role != model.RoleTeacher {
		t.Errorf("Role = %v, want RoleTeacher", snap.User.Role)
	}
}

func TestStore_TokenEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, true)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	store.Hydrate()

	require.NoError(t, store.Set("secret-token", testUser()))

	raw, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token",
		"token must not appear in plaintext on disk")
}

func TestStore_PlaintextMode(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, false)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	store.Hydrate()
	if err := store.Set("tok", testUser()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(raw) != "tok" {
		t.Errorf("plaintext mode should store the raw token, got %q", raw)
	}
}

func TestStore_SetThenClearLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, true)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	store.Hydrate()

	if err := store.Set("tok", testUser()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if changed := store.Clear(); !changed {
		t.Error("Clear of an authenticated session should report a change")
	}

	if _, err := os.Stat(filepath.Join(dir, tokenFileName)); !os.IsNotExist(err) {
		t.Error("token file should be gone after Clear")
	}
	if _, err := os.Stat(filepath.Join(dir, profileFileName)); !os.IsNotExist(err) {
		t.Error("profile file should be gone after Clear")
	}
	if store.Current().Authenticated() {
		t.Error("session should be anonymous after Clear")
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	store := newTestStore(t)
	store.Hydrate()
	require.NoError(t, store.Set("tok", testUser()))

	require.True(t, store.Clear(), "first Clear changes state")
	require.False(t, store.Clear(), "second Clear must report no change")
}

// =============================================================================
// MALFORMED PERSISTED DATA
// =============================================================================

func TestStore_HydrateMalformedData(t *testing.T) {
	goodProfile := `{"id":1,"email":"t@example.com","full_name":"T","role":"teacher"}`

	tests := []struct {
		name    string
		token   string // empty string means "no file"
		profile string
	}{
		{"token without profile", "tok", ""},
		{"profile without token", "", goodProfile},
		{"profile not json", "tok", "{not json"},
		{"profile unknown role", "tok", `{"id":1,"role":"superuser"}`},
		{"empty token file", " \n", goodProfile},
		{"garbage sealed token", "ENC:!!!not-base64!!!", goodProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.token != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFileName), []byte(tt.token), 0600))
			}
			if tt.profile != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, profileFileName), []byte(tt.profile), 0600))
			}

			store, err := NewStore(dir, true)
			require.NoError(t, err)

			snap := store.Hydrate()
			require.False(t, snap.Authenticated(), "malformed data must hydrate anonymous")

			// Hydrate must also sweep the leftovers.
			_, tokenErr := os.Stat(filepath.Join(dir, tokenFileName))
			_, profileErr := os.Stat(filepath.Join(dir, profileFileName))
			require.True(t, os.IsNotExist(tokenErr), "token leftover should be removed")
			require.True(t, os.IsNotExist(profileErr), "profile leftover should be removed")
		})
	}
}

// =============================================================================
// SUBSCRIPTION AND CONCURRENCY
// =============================================================================

func TestStore_SubscribeSeesMutations(t *testing.T) {
	store := newTestStore(t)
	ch := store.Subscribe()
	store.Hydrate()

	<-ch // hydration snapshot

	require.NoError(t, store.Set("tok", testUser()))
	snap := <-ch
	if !snap.Authenticated() {
		t.Error("subscriber should see the authenticated snapshot")
	}

	store.Clear()
	snap = <-ch
	if snap.Authenticated() {
		t.Error("subscriber should see the anonymous snapshot")
	}
}

func TestStore_GenerationAdvances(t *testing.T) {
	store := newTestStore(t)
	store.Hydrate()

	g0 := store.Generation()
	require.NoError(t, store.Set("tok", testUser()))
	g1 := store.Generation()
	store.Clear()
	g2 := store.Generation()

	if !(g0 < g1 && g1 < g2) {
		t.Errorf("generations should strictly advance: %d, %d, %d", g0, g1, g2)
	}
}

// TestStore_ConcurrentReadersAndWriters checks that snapshot reads never
// observe a torn session while logins and logouts race.
func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	store := newTestStore(t)
	store.Hydrate()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("tok", testUser())
			store.Clear()
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := store.Current()
				if snap.Authenticated() != (snap.Token != "") {
					t.Error("torn snapshot observed")
					return
				}
				if snap.Authenticated() && !snap.User.Role.Valid() {
					t.Error("authenticated snapshot with invalid role")
					return
				}
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// TOKEN CIPHER
// =============================================================================

func TestTokenCipher_SealOpen(t *testing.T) {
	c, err := newTokenCipher(t.TempDir())
	require.NoError(t, err)

	sealed, err := c.Seal("bearer-token-value")
	require.NoError(t, err)
	require.NotEqual(t, "bearer-token-value", sealed)

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "bearer-token-value", opened)
}

func TestTokenCipher_OpenPlaintextPassThrough(t *testing.T) {
	c, err := newTokenCipher(t.TempDir())
	require.NoError(t, err)

	// Tokens persisted before encryption was enabled have no prefix.
	opened, err := c.Open("legacy-plain-token")
	require.NoError(t, err)
	require.Equal(t, "legacy-plain-token", opened)
}

func TestTokenCipher_KeySurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	c1, err := newTokenCipher(dir)
	require.NoError(t, err)
	sealed, err := c1.Seal("tok")
	require.NoError(t, err)

	c2, err := newTokenCipher(dir)
	require.NoError(t, err)
	opened, err := c2.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "tok", opened)
}

func TestTokenCipher_WrongKeyFails(t *testing.T) {
	c1, err := newTokenCipher(t.TempDir())
	require.NoError(t, err)
	sealed, err := c1.Seal("tok")
	require.NoError(t, err)

	c2, err := newTokenCipher(t.TempDir())
	require.NoError(t, err)
	_, err = c2.Open(sealed)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}
