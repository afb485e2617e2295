// Copyright (c) Microsoft. All rights reserved.

// Command structured demonstrates structured output: the model is asked
// to reply as JSON matching a Go struct's generated schema, and the
// reply is decoded straight into the struct.
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

// Recipe is the shape the model must produce.
type Recipe struct {
	Name        string   `json:"name"        jsonschema:"description=Dish name,required"`
	Servings    int      `json:"servings"    jsonschema:"description=Number of servings,required"`
	Ingredients []string `json:"ingredients" jsonschema:"description=Ingredient list with quantities,required"`
	Steps       []string `json:"steps"       jsonschema:"description=Preparation steps in order,required"`
	Vegetarian  bool     `json:"vegetarian"  jsonschema:"description=True if the dish contains no meat or fish"`
}

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	client := openai.New(apiKey, openai.WithModel("gpt-4o-mini"))

	ctx := context.Background()
	recipe, err := agentic.StructuredOutput[Recipe](ctx, client,
		[]agentic.Message{
			agentic.NewUserMessage("Give me a weeknight recipe that uses leftover rice."),
		}, nil)
	if err != nil {
		log.Fatalf("structured output: %v", err)
	}

	fmt.Printf("%s (serves %d, vegetarian: %v)\n\n", recipe.Name, recipe.Servings, recipe.Vegetarian)
	fmt.Println("Ingredients:")
	for _, ing := range recipe.Ingredients {
		fmt.Printf("  - %s\n", ing)
	}
	fmt.Println("\nSteps:")
	for i, step := range recipe.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}

	// StructuredStep drops the same decoding into a chain.
	chain := agentic.Sequence(
		agentic.NewChatPromptTemplate(
			agentic.UserPrompt("Give me a {style} recipe for {dish}."),
		).Runnable(),
		agentic.StructuredStep[Recipe](client, nil),
	)
	out, err := chain.Invoke(ctx, map[string]any{"style": "quick", "dish": "shakshuka"})
	if err != nil {
		log.Fatalf("chain: %v", err)
	}
	fmt.Printf("\nFrom the chain: %s with %d ingredients\n", out.(Recipe).Name, len(out.(Recipe).Ingredients))
}
