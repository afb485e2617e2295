// Copyright (c) Microsoft. All rights reserved.

// Command tools demonstrates the agent tool loop against the Anthropic
// Messages API: typed tools with generated schemas, bounded iterations,
// and the sentinel answer when the iteration budget runs out.
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
	client := anthropic.New(apiKey, anthropic.WithMaxTokens(1024))

	convertTool := agentic.NewTypedTool("convert_currency",
		"Convert an amount between currencies using fixed demo rates.",
		func(ctx context.Context, args struct {
			Amount float64 `json:"amount" jsonschema:"description=Amount to convert,required"`
			From   string  `json:"from"   jsonschema:"description=Source currency code,required,enum=USD|EUR|NOK"`
			To     string  `json:"to"     jsonschema:"description=Target currency code,required,enum=USD|EUR|NOK"`
		}) (any, error) {
			perUSD := map[string]float64{"USD": 1, "EUR": 0.92, "NOK": 10.6}
			from, ok := perUSD[args.From]
			if !ok {
				return nil, fmt.Errorf("unsupported currency %q", args.From)
			}
			to, ok := perUSD[args.To]
			if !ok {
				return nil, fmt.Errorf("unsupported currency %q", args.To)
			}
			return map[string]any{
				"amount":    args.Amount / from * to,
				"currency":  args.To,
				"rate_note": "fixed demo rates",
			}, nil
		},
	)

	stockTool := agentic.NewTypedTool("get_stock_price",
		"Get the latest price for a stock ticker.",
		func(ctx context.Context, args struct {
			Ticker string `json:"ticker" jsonschema:"description=Stock ticker symbol,required"`
		}) (any, error) {
			// Simulated quote API.
			prices := map[string]float64{"MSFT": 423.10, "AAPL": 228.50}
			price, ok := prices[args.Ticker]
			if !ok {
				return nil, fmt.Errorf("unknown ticker %q", args.Ticker)
			}
			return map[string]any{"ticker": args.Ticker, "price": price, "currency": "USD"}, nil
		},
	)

	agent := agentic.NewAgent(client,
		agentic.WithName("quant"),
		agentic.WithInstructions("You answer financial questions using the available tools. Be concise."),
		agentic.WithTools(convertTool, stockTool),
	)

	ctx := context.Background()
	questions := []string{
		"What is one MSFT share worth in Norwegian kroner?",
		"Convert 250 EUR to USD.",
	}
	for _, q := range questions {
		resp, err := agent.Run(ctx, []agentic.Message{agentic.NewUserMessage(q)})
		if err != nil {
			log.Fatalf("run: %v", err)
		}
		fmt.Printf("Q: %s\nA: %s\n\n", q, resp.Text())
	}
}
