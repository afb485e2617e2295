// Copyright (c) Microsoft. All rights reserved.

package graph

import (
	"context"
	"sync"
)

// Checkpoint is a snapshot of a thread's progress: the state after Step
// node executions and the node that runs next (END when finished).
type Checkpoint[S any] struct {
	ThreadID string
	Step     int
	Next     string
	State    S
}

// Checkpointer persists checkpoints per thread. Implementations must treat
// Put as replacing the thread's latest checkpoint.
type Checkpointer[S any] interface {
	// Put stores cp as the thread's latest checkpoint.
	Put(ctx context.Context, cp Checkpoint[S]) error

	// Latest returns the thread's latest checkpoint, or nil if the thread
	// has none.
	Latest(ctx context.Context, threadID string) (*Checkpoint[S], error)
}

// MemorySaver is an in-memory [Checkpointer]. Safe for concurrent use.
type MemorySaver[S any] struct {
	mu     sync.Mutex
	latest map[string]Checkpoint[S]
}

// NewMemorySaver creates an empty [MemorySaver].
func NewMemorySaver[S any]() *MemorySaver[S] {
	return &MemorySaver[S]{latest: make(map[string]Checkpoint[S])}
}

func (m *MemorySaver[S]) Put(_ context.Context, cp Checkpoint[S]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[cp.ThreadID] = cp
	return nil
}

func (m *MemorySaver[S]) Latest(_ context.Context, threadID string) (*Checkpoint[S], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.latest[threadID]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}
