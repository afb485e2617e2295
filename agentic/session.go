// Copyright (c) Microsoft. All rights reserved.

package agentic

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Session manages conversation state for an agent interaction. Messages are
// stored locally via a [MessageStore]; the store can be swapped (e.g. for a
// redis-backed one) before the first run. History ownership stays with the
// caller: keeping a map of session ID to Session gives per-user conversation
// memory.
type Session struct {
	mu              sync.Mutex
	id              string
	store           MessageStore
	contextProvider ContextProvider
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithSessionID sets an explicit session identifier instead of a generated one.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// WithSessionStore sets the message store for the session.
func WithSessionStore(store MessageStore) SessionOption {
	return func(s *Session) {
		s.store = store
	}
}

// WithSessionContextProvider attaches a context provider to the session.
func WithSessionContextProvider(cp ContextProvider) SessionOption {
	return func(s *Session) {
		s.contextProvider = cp
	}
}

// NewSession creates a new Session with a generated ID.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Store returns the session's message store, or nil if none is set yet.
func (s *Session) Store() MessageStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// SetStore replaces the session's message store. It fails once the session
// already holds history in another store.
func (s *Session) SetStore(store MessageStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return fmt.Errorf("%w: store already set", ErrSessionModeLocked)
	}
	s.store = store
	return nil
}

// ContextProvider returns the session's context provider, if any.
func (s *Session) ContextProvider() ContextProvider { return s.contextProvider }

// Serialize returns the session state as a serializable map.
func (s *Session) Serialize() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := map[string]any{
		"id": s.id,
	}
	if s.store != nil {
		storeState, err := s.store.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serialize store: %w", err)
		}
		state["store"] = storeState
	}
	return state, nil
}
