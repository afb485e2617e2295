// Copyright (c) Microsoft. All rights reserved.

// Package postgres provides a postgres-backed graph checkpointer, so graph
// threads can be resumed across process restarts.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/microsoft/agentic-ai/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS graph_checkpoints (
	thread_id  TEXT PRIMARY KEY,
	step       INT NOT NULL,
	next_node  TEXT NOT NULL,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Saver persists graph checkpoints in postgres, one row per thread holding
// its latest checkpoint with the state as JSONB. It implements
// [graph.Checkpointer].
type Saver[S any] struct {
	pool *pgxpool.Pool
}

// New connects to postgres and ensures the checkpoint table exists.
//
//	saver, err := postgres.New[graph.MessageState](ctx, os.Getenv("DATABASE_URL"))
func New[S any](ctx context.Context, connString string) (*Saver[S], error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ensure schema: %w", err)
	}
	return &Saver[S]{pool: pool}, nil
}

// Put upserts the thread's latest checkpoint.
func (s *Saver[S]) Put(ctx context.Context, cp graph.Checkpoint[S]) error {
	state, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO graph_checkpoints (thread_id, step, next_node, state, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (thread_id)
		DO UPDATE SET step = $2, next_node = $3, state = $4, updated_at = now()`,
		cp.ThreadID, cp.Step, cp.Next, state,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.ThreadID, err)
	}
	return nil
}

// Latest returns the thread's latest checkpoint, or nil if the thread has
// none.
func (s *Saver[S]) Latest(ctx context.Context, threadID string) (*graph.Checkpoint[S], error) {
	var (
		step  int
		next  string
		state []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT step, next_node, state FROM graph_checkpoints WHERE thread_id = $1`,
		threadID,
	).Scan(&step, &next, &state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}

	cp := &graph.Checkpoint[S]{ThreadID: threadID, Step: step, Next: next}
	if err := json.Unmarshal(state, &cp.State); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", threadID, err)
	}
	return cp, nil
}

// Delete removes a thread's checkpoint.
func (s *Saver[S]) Delete(ctx context.Context, threadID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM graph_checkpoints WHERE thread_id = $1`, threadID)
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", threadID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Saver[S]) Close() {
	s.pool.Close()
}
