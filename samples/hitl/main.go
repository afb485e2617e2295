// Copyright (c) Microsoft. All rights reserved.

// Command hitl demonstrates human-in-the-loop interruption: the graph
// pauses before its acting node, shows the operator what the model wants
// to do, and resumes from the checkpoint only after confirmation.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	go run .
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/graph"
	"github.com/microsoft/agentic-ai/openai"
)

// refundState carries a refund request through review and execution.
type refundState struct {
	Request  string
	Proposal string
	Receipt  string
}

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	client := openai.New(apiKey, openai.WithModel("gpt-4o-mini"))

	propose := func(ctx context.Context, s refundState) (refundState, error) {
		resp, err := client.Response(ctx, []agentic.Message{
			agentic.NewSystemMessage("You review refund requests. Reply with a one-sentence proposed action."),
			agentic.NewUserMessage(s.Request),
		}, nil)
		if err != nil {
			return s, err
		}
		s.Proposal = resp.Text()
		return s, nil
	}

	execute := func(ctx context.Context, s refundState) (refundState, error) {
		// Stand-in for the real payment system call.
		s.Receipt = fmt.Sprintf("executed: %s", s.Proposal)
		return s, nil
	}

	saver := graph.NewMemorySaver[refundState]()
	app, err := graph.NewStateGraph[refundState]().
		AddNode("propose", propose).
		AddNode("execute", execute).
		SetEntryPoint("propose").
		AddEdge("propose", "execute").
		AddEdge("execute", graph.END).
		Compile(
			graph.WithCheckpointer[refundState](saver),
			graph.WithInterruptBefore[refundState]("execute"),
		)
	if err != nil {
		log.Fatalf("compile: %v", err)
	}

	ctx := context.Background()
	threadID := "refund-4815"

	initial := refundState{Request: "Order #4815 arrived broken, customer wants a refund of $42."}
	_, err = app.Invoke(ctx, initial, graph.WithThreadID(threadID))
	if !errors.Is(err, graph.ErrInterrupted) {
		log.Fatalf("expected interrupt, got: %v", err)
	}

	cp, err := saver.Latest(ctx, threadID)
	if err != nil || cp == nil {
		log.Fatalf("checkpoint: %v", err)
	}
	fmt.Printf("Model proposes: %s\n", cp.State.Proposal)
	fmt.Print("Approve? [y/N]: ")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	if answer := strings.ToLower(strings.TrimSpace(scanner.Text())); answer != "y" && answer != "yes" {
		fmt.Println("Declined. Nothing was executed.")
		return
	}

	// Resume the thread: a zero-value input means "continue from the
	// checkpoint", and execution restarts at the interrupted node.
	final, err := app.Invoke(ctx, refundState{}, graph.WithThreadID(threadID))
	if err != nil {
		log.Fatalf("resume: %v", err)
	}
	fmt.Printf("Receipt: %s\n", final.Receipt)
}
