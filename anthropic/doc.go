// Copyright (c) Microsoft. All rights reserved.

// Package anthropic provides a [Client] implementation of
// [agentic.ChatClient] backed by the Anthropic Messages API.
//
// Create a client and pass it to [agentic.NewAgent]:
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
//	    anthropic.WithModel("claude-sonnet-4-0"),
//	)
//
//	agent := agentic.NewAgent(client)
//
// Tool declarations are translated into Messages API tool params, and
// tool_use blocks in replies surface as function call contents, so the
// agent tool loop works the same as with any other provider. Tool
// results are sent back to the API as tool_result blocks inside user
// messages, which is the shape the API expects.
//
// The Messages API requires a max-token budget on every request;
// configure one with [WithMaxTokens] or per request via
// ChatOptions.MaxTokens. A small default applies otherwise.
package anthropic
