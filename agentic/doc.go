// Copyright (c) Microsoft. All rights reserved.

// Package agentic provides the core types and abstractions for building
// AI agents in Go: a composable Agent with bounded tool calling, prompt
// templates, runnable chains, middleware pipelines, session management,
// structured output, and streaming support.
//
// # Quick Start
//
// Create a ChatClient (e.g., from the openai package) and build an Agent:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//
//	agent := agentic.NewAgent(client,
//	    agentic.WithName("assistant"),
//	    agentic.WithInstructions("You are helpful."),
//	    agentic.WithTools(myTool),
//	)
//
//	resp, err := agent.Run(ctx, []agentic.Message{
//	    agentic.NewUserMessage("Hello!"),
//	})
//
// # Architecture
//
// The package is organized around these key abstractions:
//
//   - [Agent]: the top-level orchestrator that composes a client with tools,
//     middleware, and session management. Tool calling is a bounded loop:
//     at most [InvocationConfig].MaxIterations model calls, sequential tool
//     execution in request order, and a fixed final text ([MaxIterationsText])
//     when the budget runs out.
//   - [ChatClient]: interface for LLM backends (implemented by the openai,
//     anthropic, gemini, and ollama packages).
//   - [Tool]: callable functions exposed to the model via function calling.
//   - [Content]: sealed interface of concrete types representing message parts.
//   - [PromptTemplate] and [ChatPromptTemplate]: variable substitution into
//     messages, composable into [Runnable] chains.
//   - [Session]: manages multi-turn conversation state backed by a [MessageStore].
//   - [ResponseStream]: generic pull-based iterator for streaming responses.
//   - Middleware: three levels (Agent, Chat, Function) for cross-cutting concerns.
//
// # Tools
//
// Use [NewTypedTool] for type-safe tools with automatic JSON Schema generation:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name,required"`
//	    Unit     string `json:"unit"     jsonschema:"enum=celsius|fahrenheit"`
//	}
//
//	tool := agentic.NewTypedTool("get_weather", "Get current weather",
//	    func(ctx context.Context, args WeatherArgs) (any, error) {
//	        return fetchWeather(args.Location, args.Unit)
//	    },
//	)
//
// # Chains
//
// Compose prompts, models, and plain functions into pipelines:
//
//	chain := agentic.Sequence(
//	    prompt.Runnable(),
//	    agentic.ModelStep(client, nil),
//	    agentic.StrOutput(),
//	)
//	out, err := chain.Invoke(ctx, map[string]any{"topic": "gophers"})
//
// # Sessions
//
// Use sessions for multi-turn conversations:
//
//	session := agent.NewSession()
//	resp1, _ := agent.Run(ctx, msgs1, agentic.WithSession(session))
//	resp2, _ := agent.Run(ctx, msgs2, agentic.WithSession(session))
package agentic
