// Copyright (c) Microsoft. All rights reserved.

// Command graphchat demonstrates a chatbot built as a state graph: a
// model node, a tool node, and a conditional edge that loops through the
// tool node for as long as the model keeps requesting tools.
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
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/graph"
	"github.com/microsoft/agentic-ai/openai"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	client := openai.New(apiKey, openai.WithModel("gpt-4o-mini"))

	lampTool := agentic.NewTypedTool("set_lamp",
		"Turn the living room lamp on or off.",
		func(ctx context.Context, args struct {
			On bool `json:"on" jsonschema:"description=Desired lamp state,required"`
		}) (any, error) {
			return map[string]any{"lamp": "living room", "on": args.On}, nil
		},
	)
	tools := map[string]agentic.Tool{lampTool.Name(): lampTool}
	opts := &agentic.ChatOptions{Tools: []agentic.Tool{lampTool}}

	// Model node: one round-trip, reply appended to the transcript.
	modelNode := func(ctx context.Context, s graph.MessageState) (graph.MessageState, error) {
		resp, err := client.Response(ctx, s.Messages, opts)
		if err != nil {
			return s, err
		}
		return graph.AddMessages(s, resp.Messages...), nil
	}

	// Tool node: execute every call in the last reply, in order.
	toolNode := func(ctx context.Context, s graph.MessageState) (graph.MessageState, error) {
		last := s.LastMessage()
		for _, content := range last.Contents {
			call, ok := content.(*agentic.FunctionCallContent)
			if !ok {
				continue
			}
			tool, ok := tools[call.Name]
			if !ok {
				s = graph.AddMessages(s, agentic.NewToolMessage(call.CallID, fmt.Sprintf("unknown tool: %s", call.Name)))
				continue
			}
			result, err := tool.Invoke(ctx, json.RawMessage(call.Arguments))
			if err != nil {
				result = fmt.Sprintf("tool error: %v", err)
			}
			s = graph.AddMessages(s, agentic.NewToolMessage(call.CallID, result))
		}
		return s, nil
	}

	// Route back through tools while the model keeps asking for them.
	route := func(ctx context.Context, s graph.MessageState) string {
		for _, content := range s.LastMessage().Contents {
			if _, ok := content.(*agentic.FunctionCallContent); ok {
				return "tools"
			}
		}
		return "done"
	}

	app, err := graph.NewStateGraph[graph.MessageState]().
		AddNode("model", modelNode).
		AddNode("tools", toolNode).
		SetEntryPoint("model").
		AddConditionalEdges("model", route, map[string]string{
			"tools": "tools",
			"done":  graph.END,
		}).
		AddEdge("tools", "model").
		Compile()
	if err != nil {
		log.Fatalf("compile: %v", err)
	}

	initial := graph.MessageState{Messages: []agentic.Message{
		agentic.NewSystemMessage("You control a smart home. Use set_lamp for lamp requests."),
		agentic.NewUserMessage("It's getting dark in the living room, fix it and confirm."),
	}}

	final, err := app.Invoke(context.Background(), initial)
	if err != nil {
		log.Fatalf("invoke: %v", err)
	}

	last := final.LastMessage()
	fmt.Printf("Assistant: %s\n", last.Text())
	fmt.Printf("transcript length: %d messages\n", len(final.Messages))
}
