// Copyright (c) Microsoft. All rights reserved.

package agentic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StructuredOutput drives a chat call that must answer with JSON matching
// the schema generated from T, and unmarshals the reply into T.
//
// The schema is sent as the request's ResponseFormat for providers with
// native support; a schema-bearing instruction is also appended so that
// providers without it still produce conforming JSON.
func StructuredOutput[T any](ctx context.Context, client ChatClient, messages []Message, opts *ChatOptions) (T, error) {
	var out T

	schema := GenerateSchema[T]()

	merged := MergeChatOptions(opts, &ChatOptions{
		ResponseFormat: schema,
		Instructions: "Respond with a single JSON object matching this JSON Schema, with no surrounding text:\n" +
			string(schema),
	})

	resp, err := client.Response(ctx, PrependInstructions(messages, merged.Instructions), merged)
	if err != nil {
		return out, err
	}

	text := stripCodeFence(resp.Text())
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, fmt.Errorf("%w: structured output: %w", ErrInvalidResponse, err)
	}
	return out, nil
}

// StructuredStep adapts [StructuredOutput] to a chain step: string, Message,
// or []Message in; T out.
func StructuredStep[T any](client ChatClient, opts *ChatOptions) Runnable {
	return RunnableFunc(func(ctx context.Context, input any) (any, error) {
		msgs := NormalizeMessages(input)
		if len(msgs) == 0 {
			return nil, fmt.Errorf("%w: structured step expects string, Message, or []Message, got %T", ErrExecution, input)
		}
		return StructuredOutput[T](ctx, client, msgs, opts)
	})
}

// stripCodeFence removes a surrounding markdown code fence, if present.
// Models often wrap JSON replies in ```json fences even when told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
