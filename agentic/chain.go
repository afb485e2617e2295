// Copyright (c) Microsoft. All rights reserved.

package agentic

import (
	"context"
	"fmt"
)

// Runnable is a single composable step in a chain: it transforms an input
// value into an output value. Prompts, model calls, and plain functions all
// adapt to this interface, so they can be piped together with [Sequence],
// branched with [Parallel], and merged with [Assign].
type Runnable interface {
	Invoke(ctx context.Context, input any) (any, error)
}

// RunnableFunc adapts a plain function to [Runnable].
type RunnableFunc func(ctx context.Context, input any) (any, error)

func (f RunnableFunc) Invoke(ctx context.Context, input any) (any, error) {
	return f(ctx, input)
}

// Lambda wraps fn as a [Runnable].
func Lambda(fn func(ctx context.Context, input any) (any, error)) Runnable {
	return RunnableFunc(fn)
}

// Passthrough returns a [Runnable] that yields its input unchanged.
func Passthrough() Runnable {
	return RunnableFunc(func(_ context.Context, input any) (any, error) {
		return input, nil
	})
}

// sequence pipes the output of each step into the next.
type sequence struct {
	steps []Runnable
}

// Sequence composes steps into a pipeline. The output of step i becomes the
// input of step i+1.
func Sequence(steps ...Runnable) Runnable {
	return &sequence{steps: steps}
}

func (s *sequence) Invoke(ctx context.Context, input any) (any, error) {
	current := input
	for i, step := range s.steps {
		out, err := step.Invoke(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%w: chain step %d: %w", ErrExecution, i, err)
		}
		current = out
	}
	return current, nil
}

// Branch names one arm of a [Parallel] composition.
type Branch struct {
	Name string
	Step Runnable
}

// parallel fans the same input into every branch and gathers the outputs
// into a map keyed by branch name. Branches run sequentially in declaration
// order, so output is deterministic.
type parallel struct {
	branches []Branch
}

// Parallel composes named branches that each receive the same input.
// The result is a map[string]any of branch name to branch output.
func Parallel(branches ...Branch) Runnable {
	return &parallel{branches: branches}
}

func (p *parallel) Invoke(ctx context.Context, input any) (any, error) {
	out := make(map[string]any, len(p.branches))
	for _, b := range p.branches {
		v, err := b.Step.Invoke(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: branch %q: %w", ErrExecution, b.Name, err)
		}
		out[b.Name] = v
	}
	return out, nil
}

// Assign returns a [Runnable] over map inputs: it copies the input map and
// adds the step's output under key. Chaining Assign steps builds up a
// multi-step pipeline where each stage sees all earlier results.
func Assign(key string, step Runnable) Runnable {
	return RunnableFunc(func(ctx context.Context, input any) (any, error) {
		m, ok := input.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: assign %q expects map[string]any, got %T", ErrExecution, key, input)
		}
		out, err := step.Invoke(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("%w: assign %q: %w", ErrExecution, key, err)
		}
		next := make(map[string]any, len(m)+1)
		for k, v := range m {
			next[k] = v
		}
		next[key] = out
		return next, nil
	})
}

// ModelStep adapts a [ChatClient] into a [Runnable]. Input may be a string
// (sent as a user message), a [Message], or []Message; output is the
// *[ChatResponse].
func ModelStep(client ChatClient, opts *ChatOptions) Runnable {
	return RunnableFunc(func(ctx context.Context, input any) (any, error) {
		msgs := NormalizeMessages(input)
		if len(msgs) == 0 {
			return nil, fmt.Errorf("%w: model step expects string, Message, or []Message, got %T", ErrExecution, input)
		}
		if opts == nil {
			opts = &ChatOptions{}
		}
		return client.Response(ctx, msgs, opts)
	})
}

// StrOutput returns a [Runnable] that extracts the reply text from a
// *[ChatResponse] (or passes a string through unchanged).
func StrOutput() Runnable {
	return RunnableFunc(func(_ context.Context, input any) (any, error) {
		switch v := input.(type) {
		case *ChatResponse:
			return v.Text(), nil
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("%w: string output expects *ChatResponse, got %T", ErrExecution, input)
		}
	})
}

// Runnable adapts the chat template to a chain step: map[string]any in,
// []Message out.
func (t *ChatPromptTemplate) Runnable() Runnable {
	return RunnableFunc(func(_ context.Context, input any) (any, error) {
		values, ok := input.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: prompt expects map[string]any, got %T", ErrPrompt, input)
		}
		return t.Format(values)
	})
}

// Runnable adapts the text template to a chain step: map[string]any in,
// string out.
func (p *PromptTemplate) Runnable() Runnable {
	return RunnableFunc(func(_ context.Context, input any) (any, error) {
		values, ok := input.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: prompt expects map[string]any, got %T", ErrPrompt, input)
		}
		return p.Format(values)
	})
}
