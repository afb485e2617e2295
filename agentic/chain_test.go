// Copyright (c) Microsoft. All rights reserved.

package agentic_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/microsoft/agentic-ai/agentic"
)

// upperClient answers every call with the uppercased user text.
var upperClient = &mockClient{
	responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
		last := msgs[len(msgs)-1]
		return &agentic.ChatResponse{
			Messages: []agentic.Message{agentic.NewAssistantMessage(strings.ToUpper(last.Text()))},
		}, nil
	},
}

func TestSequence_PromptModelOutput(t *testing.T) {
	prompt := agentic.NewChatPromptTemplate(
		agentic.UserPrompt("say {word}"),
	)

	chain := agentic.Sequence(
		prompt.Runnable(),
		agentic.ModelStep(upperClient, nil),
		agentic.StrOutput(),
	)

	out, err := chain.Invoke(context.Background(), map[string]any{"word": "hello"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != "SAY HELLO" {
		t.Errorf("out = %q", out)
	}
}

func TestSequence_StepErrorNamesStep(t *testing.T) {
	boom := errors.New("broken step")
	chain := agentic.Sequence(
		agentic.Passthrough(),
		agentic.Lambda(func(ctx context.Context, input any) (any, error) {
			return nil, boom
		}),
	)

	_, err := chain.Invoke(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "step 1") {
		t.Errorf("error %q should identify the failing step", err)
	}
}

func TestAssign_BuildsUpPipeline(t *testing.T) {
	// Two stages: summarize, then translate the summary. Each stage sees
	// everything assigned so far.
	summarize := agentic.Lambda(func(ctx context.Context, input any) (any, error) {
		m := input.(map[string]any)
		return "summary of " + m["text"].(string), nil
	})
	translate := agentic.Lambda(func(ctx context.Context, input any) (any, error) {
		m := input.(map[string]any)
		return "fr(" + m["summary"].(string) + ")", nil
	})

	chain := agentic.Sequence(
		agentic.Assign("summary", summarize),
		agentic.Assign("translation", translate),
	)

	out, err := chain.Invoke(context.Background(), map[string]any{"text": "the report"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	m := out.(map[string]any)
	if m["text"] != "the report" {
		t.Errorf("text = %v, original input should flow through", m["text"])
	}
	if m["summary"] != "summary of the report" {
		t.Errorf("summary = %v", m["summary"])
	}
	if m["translation"] != "fr(summary of the report)" {
		t.Errorf("translation = %v", m["translation"])
	}
}

func TestAssign_RejectsNonMap(t *testing.T) {
	step := agentic.Assign("x", agentic.Passthrough())
	_, err := step.Invoke(context.Background(), "not a map")
	if err == nil {
		t.Fatal("expected error for non-map input")
	}
}

func TestParallel_NamedBranches(t *testing.T) {
	var order []string
	branch := func(name string) agentic.Runnable {
		return agentic.Lambda(func(ctx context.Context, input any) (any, error) {
			order = append(order, name)
			return name + ":" + input.(string), nil
		})
	}

	par := agentic.Parallel(
		agentic.Branch{Name: "joke", Step: branch("joke")},
		agentic.Branch{Name: "poem", Step: branch("poem")},
	)

	out, err := par.Invoke(context.Background(), "cats")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	m := out.(map[string]any)
	if m["joke"] != "joke:cats" || m["poem"] != "poem:cats" {
		t.Errorf("out = %v", m)
	}
	if len(order) != 2 || order[0] != "joke" || order[1] != "poem" {
		t.Errorf("execution order = %v, want declaration order", order)
	}
}

func TestParallel_BranchError(t *testing.T) {
	par := agentic.Parallel(
		agentic.Branch{Name: "ok", Step: agentic.Passthrough()},
		agentic.Branch{Name: "bad", Step: agentic.Lambda(func(ctx context.Context, input any) (any, error) {
			return nil, errors.New("branch failed")
		})},
	)

	_, err := par.Invoke(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error %q should name the failing branch", err)
	}
}

func TestModelStep_RejectsBadInput(t *testing.T) {
	step := agentic.ModelStep(upperClient, nil)
	_, err := step.Invoke(context.Background(), 12345)
	if err == nil {
		t.Fatal("expected error for unsupported input type")
	}
}

func TestStructuredOutput(t *testing.T) {
	type Review struct {
		Sentiment string `json:"sentiment" jsonschema:"description=positive or negative,enum=positive|negative"`
		Stars     int    `json:"stars" jsonschema:"description=1 to 5,required"`
	}

	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			if opts.ResponseFormat == nil {
				t.Error("ResponseFormat should carry the schema")
			}
			return &agentic.ChatResponse{
				Messages: []agentic.Message{agentic.NewAssistantMessage("```json\n{\"sentiment\":\"positive\",\"stars\":5}\n```")},
			}, nil
		},
	}

	review, err := agentic.StructuredOutput[Review](context.Background(), client,
		[]agentic.Message{agentic.NewUserMessage("Loved it!")}, nil)
	if err != nil {
		t.Fatalf("StructuredOutput: %v", err)
	}
	if review.Sentiment != "positive" || review.Stars != 5 {
		t.Errorf("review = %+v", review)
	}
}

func TestStructuredOutput_BadJSON(t *testing.T) {
	type Out struct {
		X int `json:"x"`
	}
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			return &agentic.ChatResponse{
				Messages: []agentic.Message{agentic.NewAssistantMessage("certainly! here is some prose")},
			}, nil
		},
	}

	_, err := agentic.StructuredOutput[Out](context.Background(), client,
		[]agentic.Message{agentic.NewUserMessage("go")}, nil)
	if err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
	if !errors.Is(err, agentic.ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}
