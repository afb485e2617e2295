// Copyright (c) Microsoft. All rights reserved.

// Command local demonstrates a multi-turn conversational agent running
// entirely on your machine using Ollama.
//
// Ollama must be installed (https://ollama.com) and the model pulled:
//
//	ollama pull llama3.2
//
// Usage:
//
//	go run .                              # defaults to llama3.2
//	go run . --model phi4-mini            # explicit model
//	go run . --serve                      # HTTP server mode on :8080
package main

import (
	"bufio"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/ollama"
)

//go:embed tool_calling_prompt.md
var toolCallingPrompt string

func main() {
	model := flag.String("model", "llama3.2", "Ollama model to use")
	serve := flag.Bool("serve", false, "run as HTTP server instead of interactive CLI")
	port := flag.String("port", "8080", "HTTP listen port (serve mode)")
	flag.Parse()

	ctx := context.Background()

	fmt.Printf("Connecting to Ollama with model %q...\n", *model)

	client, err := ollama.New(ollama.WithModel(*model))
	if err != nil {
		log.Fatalf("ollama: %v", err)
	}

	// Default options to avoid context length issues on small models.
	maxTokens := 512
	defaultOpts := &agentic.ChatOptions{
		MaxTokens: &maxTokens,
	}

	tools := GetTools()

	logger := slog.Default()

	// Local models emit tool calls as JSON text rather than structured
	// tool_calls, so the workaround middleware converts them into proper
	// FunctionCallContent objects before the tool loop sees them.
	agent := agentic.NewAgent(client,
		agentic.WithName("local-assistant"),
		agentic.WithInstructions(toolCallingPrompt),
		agentic.WithTools(tools...),
		agentic.WithChatMiddleware(ToolCallWorkaroundMiddleware(logger)),
		agentic.WithAgentMiddleware(agentic.LoggingMiddleware(logger)),
		agentic.WithFunctionMiddleware(ToolCallLoggingMiddleware()),
	)

	// ── HTTP server mode ─────────────────────────────────────────────
	if *serve {
		apiKey := os.Getenv("AGENT_API_KEY")
		if apiKey == "" {
			log.Printf("[agent] WARNING: AGENT_API_KEY not set, /invoke is unauthenticated")
		}

		srv := newAgentServer(agent, apiKey, *port)
		addr := fmt.Sprintf(":%s", *port)

		baseURL := fmt.Sprintf("http://localhost:%s", *port)
		tunnelURL := os.Getenv("DEVTUNNEL_URL")
		if tunnelURL != "" {
			baseURL = strings.TrimRight(tunnelURL, "/")
		}

		log.Printf("[agent] listening on http://localhost:%s", *port)
		log.Printf("[agent] endpoints:")
		log.Printf("[agent]   Health:     %s/health", baseURL)
		log.Printf("[agent]   Agent Card: %s/.well-known/agent.json", baseURL)
		log.Printf("[agent]   Agent Card: %s/.well-known/agent-card.json", baseURL)
		log.Printf("[agent]   Invoke:     %s/invoke  (POST)", baseURL)

		if err := http.ListenAndServe(addr, srv); err != nil {
			log.Fatalf("[agent] server error: %v", err)
		}
		return
	}

	// ── Chat loop ────────────────────────────────────────────────────
	session := agent.NewSession()

	fmt.Println("Chat with the local assistant (type 'quit' to exit, 'stream' prefix for streaming)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		if strings.HasPrefix(input, "stream ") {
			input = strings.TrimPrefix(input, "stream ")
			streamResp, err := agent.RunStream(ctx,
				[]agentic.Message{agentic.NewUserMessage(input)},
				agentic.WithSession(session),
			)
			if err != nil {
				log.Printf("Error: %v", err)
				continue
			}

			fmt.Print("Assistant: ")
			for {
				update, ok, err := streamResp.Next(ctx)
				if err != nil {
					log.Printf("\nStream error: %v", err)
					break
				}
				if !ok {
					break
				}
				fmt.Print(update.Text())
			}
			fmt.Println()
			streamResp.Close()
		} else {
			resp, err := agent.Run(ctx,
				[]agentic.Message{agentic.NewUserMessage(input)},
				agentic.WithSession(session),
				agentic.WithRunOptions(defaultOpts),
			)
			if err != nil {
				log.Printf("Error: %v", err)
				continue
			}

			fmt.Printf("Assistant: %s\n", resp.Text())
			if resp.Usage.TotalTokens > 0 {
				fmt.Printf("  [tokens: %d in, %d out]\n",
					resp.Usage.InputTokens, resp.Usage.OutputTokens)
			}
		}
		fmt.Println()
	}
}
