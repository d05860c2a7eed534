// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"maps"
	"sync"

	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.RoleResolver = StaticRoleResolver{}
)

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Snapshot returns a copy of all stored sessions keyed by id.
func (m *MemorySessionStore) Snapshot() map[string]domainauth.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.sessions)
}

// StaticRoleResolver reads roles from the first registration.
type StaticRoleResolver struct{}

func (StaticRoleResolver) Roles(user domainauth.User) ([]string, bool) {
	if len(user.Registrations) == 0 || user.Registrations[0].Roles == nil {
		return nil, false
	}
	return user.Registrations[0].Roles, true
}
