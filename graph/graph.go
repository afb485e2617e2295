// Copyright (c) Microsoft. All rights reserved.

package graph

import (
	"context"
	"errors"
	"fmt"
)

// END is the terminal pseudo-node. Routing to END finishes the run.
const END = "__end__"

// Sentinel errors for use with errors.Is.
var (
	// ErrGraph is the base error for graph construction and execution failures.
	ErrGraph = errors.New("graph error")

	// ErrInterrupted is returned when execution stops at an interrupt point.
	// The state reached so far is checkpointed; invoking the same thread
	// again with a zero-value input resumes from it.
	ErrInterrupted = fmt.Errorf("%w: interrupted", ErrGraph)

	// ErrRecursionLimit is returned when a run exceeds its step budget.
	ErrRecursionLimit = fmt.Errorf("%w: recursion limit reached", ErrGraph)
)

// NodeFunc transforms the state. Nodes must not retain the input state;
// return the updated value instead.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// Router picks the outgoing path key for a conditional edge.
type Router[S any] func(ctx context.Context, state S) string

type conditionalEdge[S any] struct {
	router  Router[S]
	pathMap map[string]string
}

// StateGraph is a builder for a graph of named nodes over state type S.
// Configure it with AddNode, AddEdge, AddConditionalEdges, and
// SetEntryPoint, then Compile it into a runnable [App].
type StateGraph[S any] struct {
	nodes       map[string]NodeFunc[S]
	edges       map[string]string
	conditional map[string]conditionalEdge[S]
	entry       string
	err         error
}

// NewStateGraph creates an empty graph builder.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:       make(map[string]NodeFunc[S]),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge[S]),
	}
}

// AddNode registers a named node. Node names must be unique and must not
// collide with END.
func (g *StateGraph[S]) AddNode(name string, fn NodeFunc[S]) *StateGraph[S] {
	switch {
	case g.err != nil:
	case name == END:
		g.err = fmt.Errorf("%w: %q is reserved", ErrGraph, END)
	case fn == nil:
		g.err = fmt.Errorf("%w: node %q has no function", ErrGraph, name)
	default:
		if _, exists := g.nodes[name]; exists {
			g.err = fmt.Errorf("%w: duplicate node %q", ErrGraph, name)
			return g
		}
		g.nodes[name] = fn
	}
	return g
}

// AddEdge adds an unconditional edge from one node to another (or to END).
func (g *StateGraph[S]) AddEdge(from, to string) *StateGraph[S] {
	if g.err != nil {
		return g
	}
	if _, exists := g.edges[from]; exists {
		g.err = fmt.Errorf("%w: node %q already has an outgoing edge", ErrGraph, from)
		return g
	}
	if _, exists := g.conditional[from]; exists {
		g.err = fmt.Errorf("%w: node %q already has conditional edges", ErrGraph, from)
		return g
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdges routes from a node through a router function. The
// router's return value is looked up in pathMap to find the target node;
// a missing key fails the run.
func (g *StateGraph[S]) AddConditionalEdges(from string, router Router[S], pathMap map[string]string) *StateGraph[S] {
	switch {
	case g.err != nil:
	case router == nil:
		g.err = fmt.Errorf("%w: node %q has a nil router", ErrGraph, from)
	case len(pathMap) == 0:
		g.err = fmt.Errorf("%w: node %q has an empty path map", ErrGraph, from)
	default:
		if _, exists := g.edges[from]; exists {
			g.err = fmt.Errorf("%w: node %q already has an outgoing edge", ErrGraph, from)
			return g
		}
		if _, exists := g.conditional[from]; exists {
			g.err = fmt.Errorf("%w: node %q already has conditional edges", ErrGraph, from)
			return g
		}
		g.conditional[from] = conditionalEdge[S]{router: router, pathMap: pathMap}
	}
	return g
}

// SetEntryPoint names the node execution starts at.
func (g *StateGraph[S]) SetEntryPoint(name string) *StateGraph[S] {
	if g.err == nil {
		g.entry = name
	}
	return g
}

// CompileOption configures [StateGraph.Compile].
type CompileOption[S any] func(*App[S])

// WithCheckpointer persists state after every node, keyed by thread ID.
func WithCheckpointer[S any](cp Checkpointer[S]) CompileOption[S] {
	return func(a *App[S]) { a.checkpointer = cp }
}

// WithInterruptBefore stops execution just before any of the named nodes,
// returning [ErrInterrupted] with the state checkpointed for resumption.
func WithInterruptBefore[S any](nodes ...string) CompileOption[S] {
	return func(a *App[S]) {
		for _, n := range nodes {
			a.interruptBefore[n] = true
		}
	}
}

// Compile validates the graph and returns a runnable [App].
func (g *StateGraph[S]) Compile(opts ...CompileOption[S]) (*App[S], error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.entry == "" {
		return nil, fmt.Errorf("%w: no entry point", ErrGraph)
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("%w: entry point %q is not a node", ErrGraph, g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: edge from unknown node %q", ErrGraph, from)
		}
		if to != END {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("%w: edge %q -> unknown node %q", ErrGraph, from, to)
			}
		}
	}
	for from, ce := range g.conditional {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: conditional edges from unknown node %q", ErrGraph, from)
		}
		for key, to := range ce.pathMap {
			if to != END {
				if _, ok := g.nodes[to]; !ok {
					return nil, fmt.Errorf("%w: path %q from %q -> unknown node %q", ErrGraph, key, from, to)
				}
			}
		}
	}
	for name := range g.nodes {
		_, hasEdge := g.edges[name]
		_, hasCond := g.conditional[name]
		if !hasEdge && !hasCond {
			return nil, fmt.Errorf("%w: node %q has no outgoing edge", ErrGraph, name)
		}
	}

	app := &App[S]{
		graph:           g,
		interruptBefore: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(app)
	}
	for n := range app.interruptBefore {
		if _, ok := g.nodes[n]; !ok {
			return nil, fmt.Errorf("%w: interrupt before unknown node %q", ErrGraph, n)
		}
	}
	if len(app.interruptBefore) > 0 && app.checkpointer == nil {
		return nil, fmt.Errorf("%w: interrupts require a checkpointer", ErrGraph)
	}
	return app, nil
}
