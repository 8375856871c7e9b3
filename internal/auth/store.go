// Package auth holds the persisted bearer credential and its lifecycle: set
// on login, cleared on logout or on any 401 response, read on every outbound
// call. It is the sole piece of global mutable state in the client, so it is
// an explicit injected store rather than ambient package state.
package auth

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/atlasprime/atlas/internal/logger"
	"github.com/atlasprime/atlas/internal/models"
)

// Store persists credentials to a single file (mode 0600) and notifies
// registered hooks when the credential is torn down.
type Store struct {
	mu      sync.Mutex
	path    string
	creds   models.Credentials
	onClear []func()
}

// NewStore loads any previously persisted credential from path. A missing or
// unreadable file simply yields an unauthenticated store.
func NewStore(path string) *Store {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &s.creds); err != nil {
			logger.Warnf("ignoring malformed credential file %s: %v", path, err)
			s.creds = models.Credentials{}
		}
	}
	return s
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.AccessToken
}

// Email returns the account the credential was issued for.
func (s *Store) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Email
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Set replaces the credential wholesale and persists it.
func (s *Store) Set(creds models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear drops the credential from memory and disk and fires the teardown
// hooks. Clearing an already-empty store is a no-op, so a burst of 401
// responses tears the session down exactly once.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.creds.AccessToken == "" {
		s.mu.Unlock()
		return
	}
	s.creds = models.Credentials{}
	hooks := make([]func(), len(s.onClear))
	copy(hooks, s.onClear)
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("failed to remove credential file: %v", err)
	}
	for _, hook := range hooks {
		hook()
	}
}

// OnClear registers a hook fired when the credential is torn down. The TUI
// uses this to drop back to its login prompt on a 401 from any call.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}
