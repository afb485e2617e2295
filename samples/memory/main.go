// Copyright (c) Microsoft. All rights reserved.

// Command memory demonstrates conversation memory: each session ID owns
// its own message store, so parallel conversations never bleed into each
// other. With --redis the history lives in Redis and survives restarts.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	go run .
//	go run . --redis --redis-addr localhost:6379
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/openai"
	redisstore "github.com/microsoft/agentic-ai/stores/redis"
)

func main() {
	_ = godotenv.Load()

	useRedis := flag.Bool("redis", false, "store conversation history in Redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis address")
	flag.Parse()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	client := openai.New(apiKey, openai.WithModel("gpt-4o-mini"))

	agent := agentic.NewAgent(client,
		agentic.WithName("concierge"),
		agentic.WithInstructions("You are a travel concierge. Remember what the user tells you and keep answers short."),
	)

	ctx := context.Background()

	newSession := func(id string) *agentic.Session {
		if !*useRedis {
			return agentic.NewSession(agentic.WithSessionID(id))
		}
		store, err := redisstore.New(ctx, *redisAddr, id)
		if err != nil {
			log.Fatalf("redis store: %v", err)
		}
		return agentic.NewSession(agentic.WithSessionID(id), agentic.WithSessionStore(store))
	}

	alice := newSession("alice")
	bob := newSession("bob")

	turns := []struct {
		session *agentic.Session
		text    string
	}{
		{alice, "I'm planning a trip to Kyoto in November."},
		{bob, "I'm planning a trip to Reykjavik in January."},
		{alice, "What should I pack?"},
		{bob, "What should I pack?"},
	}

	for _, turn := range turns {
		resp, err := agent.Run(ctx,
			[]agentic.Message{agentic.NewUserMessage(turn.text)},
			agentic.WithSession(turn.session),
		)
		if err != nil {
			log.Fatalf("run: %v", err)
		}
		fmt.Printf("[%s] You:       %s\n", turn.session.ID(), turn.text)
		fmt.Printf("[%s] Assistant: %s\n\n", turn.session.ID(), resp.Text())
	}

	// The same question got different answers because each session
	// carries its own history.
	history, err := alice.Store().ListMessages(ctx)
	if err != nil {
		log.Fatalf("history: %v", err)
	}
	fmt.Printf("alice's session holds %d messages\n", len(history))
}
