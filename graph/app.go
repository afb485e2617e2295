// Copyright (c) Microsoft. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/microsoft/agentic-ai/agentic"
)

// defaultRecursionLimit bounds how many nodes a single run may execute.
const defaultRecursionLimit = 25

// App is a compiled, runnable graph.
type App[S any] struct {
	graph           *StateGraph[S]
	checkpointer    Checkpointer[S]
	interruptBefore map[string]bool
}

// Event is one entry of a streamed run: the node that just executed and the
// state after it.
type Event[S any] struct {
	Node  string
	State S
}

// RunOption configures a single Invoke or Stream call.
type RunOption func(*runConfig)

type runConfig struct {
	threadID       string
	recursionLimit int
}

// WithThreadID keys checkpoints to a conversation thread. Reusing a thread
// ID continues from its latest checkpoint.
func WithThreadID(id string) RunOption {
	return func(c *runConfig) { c.threadID = id }
}

// WithRecursionLimit overrides the per-run node execution budget.
func WithRecursionLimit(n int) RunOption {
	return func(c *runConfig) { c.recursionLimit = n }
}

// Invoke runs the graph to completion and returns the final state.
//
// With a checkpointer and thread ID, a zero-value initial state resumes the
// thread from its latest checkpoint; a non-zero one starts the thread over
// from the given state.
func (a *App[S]) Invoke(ctx context.Context, initial S, opts ...RunOption) (S, error) {
	return a.run(ctx, initial, buildRunConfig(opts), nil)
}

// Stream runs the graph and emits an [Event] after every executed node.
// The final state is the last event's state; errors surface through the
// stream.
func (a *App[S]) Stream(ctx context.Context, initial S, opts ...RunOption) *agentic.ResponseStream[Event[S]] {
	cfg := buildRunConfig(opts)
	return agentic.NewResponseStream(ctx, func(ctx context.Context, ch chan<- Event[S]) error {
		emit := func(ev Event[S]) error {
			select {
			case ch <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		_, err := a.run(ctx, initial, cfg, emit)
		return err
	})
}

func buildRunConfig(opts []RunOption) runConfig {
	cfg := runConfig{recursionLimit: defaultRecursionLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.recursionLimit <= 0 {
		cfg.recursionLimit = defaultRecursionLimit
	}
	return cfg
}

func (a *App[S]) run(ctx context.Context, initial S, cfg runConfig, emit func(Event[S]) error) (S, error) {
	state := initial
	node := a.graph.entry
	step := 0
	resumed := false

	if a.checkpointer != nil && cfg.threadID != "" {
		var zero S
		if reflect.DeepEqual(initial, zero) {
			cp, err := a.checkpointer.Latest(ctx, cfg.threadID)
			if err != nil {
				return state, fmt.Errorf("%w: load checkpoint: %w", ErrGraph, err)
			}
			if cp != nil {
				if cp.Next == END {
					return cp.State, nil
				}
				state = cp.State
				node = cp.Next
				step = cp.Step
				resumed = true
				slog.DebugContext(ctx, "graph resumed",
					"thread_id", cfg.threadID, "node", node, "step", step)
			}
		}
	}

	executed := 0
	for node != END {
		if a.interruptBefore[node] && !resumed {
			if err := a.checkpoint(ctx, cfg.threadID, step, node, state); err != nil {
				return state, err
			}
			return state, fmt.Errorf("%w before node %q", ErrInterrupted, node)
		}
		resumed = false

		if executed >= cfg.recursionLimit {
			return state, fmt.Errorf("%w (%d)", ErrRecursionLimit, cfg.recursionLimit)
		}
		executed++

		fn := a.graph.nodes[node]
		next, err := a.route(ctx, node, &state, fn)
		if err != nil {
			return state, err
		}
		step++

		if err := a.checkpoint(ctx, cfg.threadID, step, next, state); err != nil {
			return state, err
		}
		if emit != nil {
			if err := emit(Event[S]{Node: node, State: state}); err != nil {
				return state, err
			}
		}
		node = next
	}
	return state, nil
}

// route executes one node and resolves its outgoing edge.
func (a *App[S]) route(ctx context.Context, node string, state *S, fn NodeFunc[S]) (string, error) {
	out, err := fn(ctx, *state)
	if err != nil {
		return "", fmt.Errorf("%w: node %q: %w", ErrGraph, node, err)
	}
	*state = out

	if to, ok := a.graph.edges[node]; ok {
		return to, nil
	}
	ce := a.graph.conditional[node]
	key := ce.router(ctx, *state)
	to, ok := ce.pathMap[key]
	if !ok {
		return "", fmt.Errorf("%w: node %q routed to unknown path %q", ErrGraph, node, key)
	}
	return to, nil
}

func (a *App[S]) checkpoint(ctx context.Context, threadID string, step int, next string, state S) error {
	if a.checkpointer == nil || threadID == "" {
		return nil
	}
	err := a.checkpointer.Put(ctx, Checkpoint[S]{
		ThreadID: threadID,
		Step:     step,
		Next:     next,
		State:    state,
	})
	if err != nil {
		return fmt.Errorf("%w: save checkpoint: %w", ErrGraph, err)
	}
	return nil
}
