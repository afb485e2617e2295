// Copyright (c) Microsoft. All rights reserved.

// Command basics demonstrates the smallest possible pipeline: a prompt
// template, a model call, and a string output parser composed into one
// runnable chain.
//
// It runs against Groq's OpenAI-compatible endpoint:
//
//	export GROQ_API_KEY=gsk_...
//	go run .
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/openai"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Fatal("GROQ_API_KEY not set")
	}

	client := openai.New(apiKey,
		openai.WithBaseURL("https://api.groq.com/openai/v1"),
		openai.WithModel("llama-3.3-70b-versatile"),
	)

	prompt := agentic.NewChatPromptTemplate(
		agentic.SystemPrompt("You are a concise assistant that answers in one sentence."),
		agentic.UserPrompt("Explain {topic} to a {audience}."),
	)

	chain := agentic.Sequence(
		prompt.Runnable(),
		agentic.ModelStep(client, nil),
		agentic.StrOutput(),
	)

	ctx := context.Background()
	for _, topic := range []string{"goroutines", "garbage collection"} {
		out, err := chain.Invoke(ctx, map[string]any{
			"topic":    topic,
			"audience": "new Go developer",
		})
		if err != nil {
			log.Fatalf("chain: %v", err)
		}
		fmt.Printf("%s:\n  %s\n\n", topic, out)
	}
}
