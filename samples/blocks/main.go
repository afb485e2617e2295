// Copyright (c) Microsoft. All rights reserved.

// Command blocks demonstrates the content model: a reply is a list of
// typed content blocks, not just a string. The sample asks Gemini a
// question with a tool attached and walks the blocks it gets back.
//
// Usage:
//
//	export GEMINI_API_KEY=...
//	go run .
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/gemini"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY or GOOGLE_API_KEY not set")
	}

	ctx := context.Background()
	client, err := gemini.New(ctx, apiKey, gemini.WithModel("gemini-1.5-flash"))
	if err != nil {
		log.Fatalf("gemini: %v", err)
	}
	defer client.Close()

	lookupTool := agentic.NewTypedTool("lookup_population",
		"Look up the population of a city.",
		func(ctx context.Context, args struct {
			City string `json:"city" jsonschema:"description=City name,required"`
		}) (any, error) {
			return map[string]any{"city": args.City, "population": 709_000}, nil
		},
	)

	resp, err := client.Response(ctx,
		[]agentic.Message{agentic.NewUserMessage("How many people live in Oslo?")},
		&agentic.ChatOptions{Tools: []agentic.Tool{lookupTool}},
	)
	if err != nil {
		log.Fatalf("response: %v", err)
	}

	fmt.Printf("finish reason: %s\n", resp.FinishReason)
	fmt.Printf("tokens: %d in, %d out\n\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)

	for _, msg := range resp.Messages {
		for i, content := range msg.Contents {
			switch block := content.(type) {
			case *agentic.TextContent:
				fmt.Printf("block %d: text      %q\n", i, block.Text)
			case *agentic.FunctionCallContent:
				fmt.Printf("block %d: tool call %s(%s) id=%s\n", i, block.Name, block.Arguments, block.CallID)
			default:
				fmt.Printf("block %d: %s\n", i, content.Type())
			}
		}
	}
}
