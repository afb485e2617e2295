// Copyright (c) Microsoft. All rights reserved.

// Command middleware demonstrates the three middleware levels: agent
// middleware around each run, chat middleware around each model call
// (here trimming history before it leaves the process), and function
// middleware around each tool invocation.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	go run .
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/openai"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	client := openai.New(apiKey, openai.WithModel("gpt-4o-mini"))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	diceTool := agentic.NewTool("roll_dice",
		"Roll a six-sided die.",
		json.RawMessage(`{"type":"object","properties":{}}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return map[string]int{"value": 4}, nil
		},
	)

	timingMiddleware := func(next agentic.FunctionHandler) agentic.FunctionHandler {
		return func(ctx context.Context, tool agentic.Tool, args json.RawMessage) (any, error) {
			logger.Info("tool call", "tool", tool.Name(), "args", string(args))
			result, err := next(ctx, tool, args)
			if err != nil {
				logger.Error("tool failed", "tool", tool.Name(), "error", err)
			}
			return result, err
		}
	}

	agent := agentic.NewAgent(client,
		agentic.WithName("dungeon-master"),
		agentic.WithInstructions("You narrate a dice game. Use roll_dice when a roll is needed."),
		agentic.WithTools(diceTool),
		agentic.WithAgentMiddleware(agentic.LoggingMiddleware(logger)),
		agentic.WithChatMiddleware(
			agentic.TrimHistoryMiddleware(6),
			agentic.ResponseLoggingMiddleware(logger),
		),
		agentic.WithFunctionMiddleware(timingMiddleware),
	)

	ctx := context.Background()
	session := agent.NewSession()

	for _, input := range []string{
		"Roll for initiative.",
		"Did I beat a 3?",
	} {
		resp, err := agent.Run(ctx,
			[]agentic.Message{agentic.NewUserMessage(input)},
			agentic.WithSession(session),
		)
		if err != nil {
			log.Fatalf("run: %v", err)
		}
		fmt.Printf("You:       %s\nAssistant: %s\n\n", input, resp.Text())
	}
}
