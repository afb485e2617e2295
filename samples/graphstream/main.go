// Copyright (c) Microsoft. All rights reserved.

// Command graphstream demonstrates streaming graph execution: Stream
// emits one event per executed node, so you can watch state move through
// the graph instead of waiting for the final result.
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
	"strings"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/graph"
	"github.com/microsoft/agentic-ai/openai"
)

// draftState moves through research, draft, and polish stages.
type draftState struct {
	Topic    string
	Notes    string
	Draft    string
	Polished string
}

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	client := openai.New(apiKey, openai.WithModel("gpt-4o-mini"))

	ask := func(ctx context.Context, system, user string) (string, error) {
		resp, err := client.Response(ctx, []agentic.Message{
			agentic.NewSystemMessage(system),
			agentic.NewUserMessage(user),
		}, nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}

	research := func(ctx context.Context, s draftState) (draftState, error) {
		notes, err := ask(ctx, "List three bullet points about the topic.", s.Topic)
		s.Notes = notes
		return s, err
	}
	draft := func(ctx context.Context, s draftState) (draftState, error) {
		text, err := ask(ctx, "Write a short paragraph from these notes.", s.Notes)
		s.Draft = text
		return s, err
	}
	polish := func(ctx context.Context, s draftState) (draftState, error) {
		text, err := ask(ctx, "Tighten this paragraph. Keep it under 60 words.", s.Draft)
		s.Polished = text
		return s, err
	}

	app, err := graph.NewStateGraph[draftState]().
		AddNode("research", research).
		AddNode("draft", draft).
		AddNode("polish", polish).
		SetEntryPoint("research").
		AddEdge("research", "draft").
		AddEdge("draft", "polish").
		AddEdge("polish", graph.END).
		Compile()
	if err != nil {
		log.Fatalf("compile: %v", err)
	}

	ctx := context.Background()
	stream := app.Stream(ctx, draftState{Topic: "why Go ships static binaries"})

	var final draftState
	for {
		event, ok, err := stream.Next(ctx)
		if err != nil {
			log.Fatalf("stream: %v", err)
		}
		if !ok {
			break
		}
		fmt.Printf("── node %q done ──\n", event.Node)
		switch event.Node {
		case "research":
			fmt.Println(strings.TrimSpace(event.State.Notes))
		case "draft":
			fmt.Println(strings.TrimSpace(event.State.Draft))
		case "polish":
			fmt.Println(strings.TrimSpace(event.State.Polished))
		}
		fmt.Println()
		final = event.State
	}

	fmt.Printf("final draft is %d characters\n", len(final.Polished))
}
