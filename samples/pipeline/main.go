// Copyright (c) Microsoft. All rights reserved.

// Command pipeline demonstrates a multi-step pipeline where each step's
// output is assigned into a shared map and feeds the next step: summarize
// a text, then translate the summary.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
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

const review = `The new release is noticeably faster on large workspaces and
the editor no longer freezes during indexing. Search results are better
ranked. The settings UI is still confusing and the dark theme has low
contrast in the terminal pane.`

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	client := openai.New(apiKey, openai.WithModel("gpt-4o-mini"))

	summarize := agentic.Sequence(
		agentic.NewChatPromptTemplate(
			agentic.SystemPrompt("You summarize product reviews in one sentence."),
			agentic.UserPrompt("{text}"),
		).Runnable(),
		agentic.ModelStep(client, nil),
		agentic.StrOutput(),
	)

	translate := agentic.Sequence(
		agentic.NewChatPromptTemplate(
			agentic.SystemPrompt("You translate text into {language}. Reply with the translation only."),
			agentic.UserPrompt("{summary}"),
		).Runnable(),
		agentic.ModelStep(client, nil),
		agentic.StrOutput(),
	)

	// Each Assign step reads the accumulated map and adds one key.
	chain := agentic.Sequence(
		agentic.Assign("summary", summarize),
		agentic.Assign("translation", translate),
	)

	out, err := chain.Invoke(context.Background(), map[string]any{
		"text":     review,
		"language": "Norwegian",
	})
	if err != nil {
		log.Fatalf("chain: %v", err)
	}

	result := out.(map[string]any)
	fmt.Printf("Summary:     %s\n", result["summary"])
	fmt.Printf("Translation: %s\n", result["translation"])
}
