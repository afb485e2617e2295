// Copyright (c) Microsoft. All rights reserved.

// Command composition demonstrates composing independent chains with
// Parallel: the same input fans out to named branches and the results
// come back as one map. Branches run sequentially in declaration order,
// so output is deterministic for scripted models.
//
// Usage:
//
//	export ANTHROPIC_API_KEY=sk-ant-...
//	go run .
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/anthropic"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY not set")
	}
	client := anthropic.New(apiKey, anthropic.WithMaxTokens(512))

	chainFor := func(instruction string) agentic.Runnable {
		return agentic.Sequence(
			agentic.NewChatPromptTemplate(
				agentic.SystemPrompt(instruction),
				agentic.UserPrompt("{text}"),
			).Runnable(),
			agentic.ModelStep(client, nil),
			agentic.StrOutput(),
		)
	}

	fanOut := agentic.Parallel(
		agentic.Branch{Name: "sentiment", Step: chainFor("Classify the sentiment of the text as positive, negative, or mixed. One word.")},
		agentic.Branch{Name: "keywords", Step: chainFor("Extract the three most important keywords, comma separated.")},
		agentic.Branch{Name: "title", Step: chainFor("Write a five word headline for the text.")},
	)

	out, err := fanOut.Invoke(context.Background(), map[string]any{
		"text": "The conference wifi was unusable, but the talks were excellent and the hallway conversations made the trip worth it.",
	})
	if err != nil {
		log.Fatalf("parallel: %v", err)
	}

	results := out.(map[string]any)
	for _, name := range []string{"sentiment", "keywords", "title"} {
		fmt.Printf("%-10s %s\n", name+":", results[name])
	}
}
