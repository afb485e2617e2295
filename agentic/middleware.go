// Copyright (c) Microsoft. All rights reserved.

package agentic

import (
	"context"
	"encoding/json"
)

// AgentHandler is the function signature for processing an agent run.
type AgentHandler func(ctx context.Context, req *AgentRequest) (*AgentResponse, error)

// AgentRequest carries the inputs for an agent run through the middleware pipeline.
type AgentRequest struct {
	Messages []Message
	Session  *Session
	Options  *ChatOptions
}

// AgentMiddleware wraps an [AgentHandler] to add cross-cutting behavior.
// Middleware should call next to continue the chain, or return early to short-circuit.
type AgentMiddleware func(next AgentHandler) AgentHandler

// ChatHandler is the function signature for processing a chat request.
type ChatHandler func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

// ChatMiddleware wraps a [ChatHandler] to add cross-cutting behavior.
type ChatMiddleware func(next ChatHandler) ChatHandler

// FunctionHandler is the function signature for invoking a tool.
type FunctionHandler func(ctx context.Context, tool Tool, args json.RawMessage) (any, error)

// FunctionMiddleware wraps a [FunctionHandler] to add cross-cutting behavior.
type FunctionMiddleware func(next FunctionHandler) FunctionHandler

// chainAgentMiddleware applies middleware in order (first in list = outermost wrapper).
func chainAgentMiddleware(handler AgentHandler, mws ...AgentMiddleware) AgentHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// chainChatMiddleware applies middleware in order (first in list = outermost wrapper).
func chainChatMiddleware(handler ChatHandler, mws ...ChatMiddleware) ChatHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// chainFunctionMiddleware applies middleware in order.
func chainFunctionMiddleware(handler FunctionHandler, mws ...FunctionMiddleware) FunctionHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// middlewareChatClient routes Response through a middleware-wrapped handler
// while delegating StreamResponse to the inner client.
type middlewareChatClient struct {
	handler ChatHandler
	inner   ChatClient
}

func (c *middlewareChatClient) Response(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

func (c *middlewareChatClient) StreamResponse(ctx context.Context, messages []Message, opts *ChatOptions) (*ResponseStream[ChatResponseUpdate], error) {
	return c.inner.StreamResponse(ctx, messages, opts)
}

// TrimHistoryMiddleware returns a [ChatMiddleware] that keeps only the most
// recent max messages before each model call. A leading system message is
// always preserved. Non-positive max leaves the history untouched.
func TrimHistoryMiddleware(max int) ChatMiddleware {
	return func(next ChatHandler) ChatHandler {
		return func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
			if max <= 0 || len(messages) <= max {
				return next(ctx, messages, opts)
			}
			var system []Message
			rest := messages
			if rest[0].Role == RoleSystem {
				system = rest[:1]
				rest = rest[1:]
			}
			if len(rest) > max {
				rest = rest[len(rest)-max:]
			}
			trimmed := make([]Message, 0, len(system)+len(rest))
			trimmed = append(trimmed, system...)
			trimmed = append(trimmed, rest...)
			return next(ctx, trimmed, opts)
		}
	}
}
