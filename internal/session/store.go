// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/util"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is an immutable view of session state. Readers get a copy;
// mutations replace the whole snapshot, never edit it in place.
type Snapshot struct {
	Token string
	User  model.User
}

// Authenticated reports whether the snapshot holds a live session.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// =============================================================================
// STORE
// =============================================================================

const (
	tokenFileName   = "token"
	profileFileName = "profile.json"
)

// ErrNotHydrated is returned when session state is read before Hydrate.
var ErrNotHydrated = errors.New("session store not hydrated")

// Store is the single source of truth for authentication state.
type Store struct {
	mu  sync.RWMutex
	dir string

	// cipher seals the token at rest; nil when encryption is disabled.
	cipher *tokenCipher

	snap       Snapshot
	hydrated   bool
	generation uint64

	subs []chan Snapshot
}

// NewStore creates a session store rooted at dir. When encrypt is true
// the persisted token is sealed with a key kept next to it.
func NewStore(dir string, encrypt bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	s := &Store{dir: dir}
	if encrypt {
		c, err := newTokenCipher(dir)
		if err != nil {
			return nil, err
		}
		s.cipher = c
	}
	return s, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Hydrate loads a previously persisted session. It never fails the
// application: malformed, unreadable or half-present data yields an
// anonymous session and the on-disk leftovers are removed so the
// token-iff-profile invariant holds everywhere.
func (s *Store) Hydrate() Snapshot {
	snap, ok := s.readPersisted()
	if !ok {
		s.removePersisted()
		snap = Snapshot{}
	}

	s.mu.Lock()
	s.snap = snap
	s.hydrated = true
	s.generation++
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// Hydrated reports whether Hydrate has completed.
func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Current returns the current session snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Generation returns a counter bumped on every mutation. Readers that
// cache a snapshot can compare generations instead of snapshots.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Set persists and publishes a new authenticated session. Both files
// are written before the in-memory snapshot is replaced, so no reader
// observes a session the disk does not back.
func (s *Store) Set(token string, user model.User) error {
	if token == "" {
		return errors.New("refusing to set session with empty token")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("refusing to set session with unknown role %q", user.Role)
	}

	profile, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	stored := token
	if s.cipher != nil {
		if stored, err = s.cipher.Seal(token); err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
	}

	// Profile first, token second: hydration requires both, so a crash
	// between the two writes leaves a pair Hydrate discards as a whole.
	if err := util.AtomicWriteFile(s.profilePath(), profile, 0600); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	if err := util.AtomicWriteFile(s.tokenPath(), []byte(stored), 0600); err != nil {
		os.Remove(s.profilePath())
		return fmt.Errorf("failed to persist token: %w", err)
	}

	snap := Snapshot{Token: token, User: user}
	s.mu.Lock()
	s.snap = snap
	s.generation++
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// Clear removes the persisted session and publishes an anonymous one.
// It reports whether the state actually changed, which lets the API
// client emit exactly one invalidation signal under concurrent 401s.
func (s *Store) Clear() bool {
	s.removePersisted()

	s.mu.Lock()
	changed := s.snap.Authenticated()
	s.snap = Snapshot{}
	s.generation++
	s.mu.Unlock()

	if changed {
		s.notify(Snapshot{})
	}
	return changed
}

// =============================================================================
// SUBSCRIPTION
// =============================================================================

// Subscribe returns a channel that receives a snapshot after every
// mutation. Delivery is best-effort: a subscriber that is not draining
// misses intermediate snapshots but always has a newer one pending.
func (s *Store) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify(snap Snapshot) {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()

	for _, ch := range subs {
		// Replace a stale pending snapshot rather than blocking.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (s *Store) tokenPath() string   { return filepath.Join(s.dir, tokenFileName) }
func (s *Store) profilePath() string { return filepath.Join(s.dir, profileFileName) }

// readPersisted loads the token/profile pair. ok is false unless both
// are present and well-formed.
func (s *Store) readPersisted() (Snapshot, bool) {
	rawToken, err := os.ReadFile(s.tokenPath())
	if err != nil {
		return Snapshot{}, false
	}
	rawProfile, err := os.ReadFile(s.profilePath())
	if err != nil {
		return Snapshot{}, false
	}

	token := strings.TrimSpace(string(rawToken))
	if s.cipher != nil {
		if token, err = s.cipher.Open(token); err != nil {
			return Snapshot{}, false
		}
	}
	if token == "" {
		return Snapshot{}, false
	}

	var user model.User
	if err := json.Unmarshal(rawProfile, &user); err != nil {
		return Snapshot{}, false
	}
	if !user.Role.Valid() {
		return Snapshot{}, false
	}

	return Snapshot{Token: token, User: user}, true
}

func (s *Store) removePersisted() {
	os.Remove(s.tokenPath())
	os.Remove(s.profilePath())
}
