// Copyright (c) Microsoft. All rights reserved.

package graph_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/graph"
)

type counter struct {
	N     int    `json:"n"`
	Trail string `json:"trail"`
}

func addNode(label string, delta int) graph.NodeFunc[counter] {
	return func(ctx context.Context, s counter) (counter, error) {
		s.N += delta
		s.Trail += label
		return s, nil
	}
}

func TestGraph_LinearInvoke(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("a", addNode("a", 1))
	g.AddNode("b", addNode("b", 10))
	g.AddEdge("a", "b")
	g.AddEdge("b", graph.END)
	g.SetEntryPoint("a")

	app, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	out, err := app.Invoke(context.Background(), counter{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out.N != 11 || out.Trail != "ab" {
		t.Errorf("out = %+v", out)
	}
}

func TestGraph_ConditionalEdges(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("work", addNode("w", 1))
	g.AddConditionalEdges("work",
		func(ctx context.Context, s counter) string {
			if s.N < 3 {
				return "again"
			}
			return "done"
		},
		map[string]string{
			"again": "work",
			"done":  graph.END,
		},
	)
	g.SetEntryPoint("work")

	app, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	out, err := app.Invoke(context.Background(), counter{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out.N != 3 || out.Trail != "www" {
		t.Errorf("out = %+v", out)
	}
}

func TestGraph_UnknownPathFails(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("a", addNode("a", 1))
	g.AddConditionalEdges("a",
		func(ctx context.Context, s counter) string { return "nowhere" },
		map[string]string{"end": graph.END},
	)
	g.SetEntryPoint("a")

	app, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	_, err = app.Invoke(context.Background(), counter{})
	if err == nil {
		t.Fatal("expected error for unmapped route")
	}
	if !errors.Is(err, graph.ErrGraph) {
		t.Errorf("error = %v", err)
	}
}

func TestGraph_CompileValidation(t *testing.T) {
	t.Run("no entry point", func(t *testing.T) {
		g := graph.NewStateGraph[counter]()
		g.AddNode("a", addNode("a", 1))
		g.AddEdge("a", graph.END)
		if _, err := g.Compile(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("dangling node", func(t *testing.T) {
		g := graph.NewStateGraph[counter]()
		g.AddNode("a", addNode("a", 1))
		g.SetEntryPoint("a")
		_, err := g.Compile()
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "no outgoing edge") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("edge to unknown node", func(t *testing.T) {
		g := graph.NewStateGraph[counter]()
		g.AddNode("a", addNode("a", 1))
		g.AddEdge("a", "ghost")
		g.SetEntryPoint("a")
		if _, err := g.Compile(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("duplicate node", func(t *testing.T) {
		g := graph.NewStateGraph[counter]()
		g.AddNode("a", addNode("a", 1))
		g.AddNode("a", addNode("a", 2))
		g.AddEdge("a", graph.END)
		g.SetEntryPoint("a")
		if _, err := g.Compile(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("interrupt without checkpointer", func(t *testing.T) {
		g := graph.NewStateGraph[counter]()
		g.AddNode("a", addNode("a", 1))
		g.AddEdge("a", graph.END)
		g.SetEntryPoint("a")
		if _, err := g.Compile(graph.WithInterruptBefore[counter]("a")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestGraph_NodeErrorNamesNode(t *testing.T) {
	boom := errors.New("node blew up")
	g := graph.NewStateGraph[counter]()
	g.AddNode("bad", func(ctx context.Context, s counter) (counter, error) {
		return s, boom
	})
	g.AddEdge("bad", graph.END)
	g.SetEntryPoint("bad")

	app, err := g.Compile()
	if err != nil {
		t.Fatal(err)
	}
	_, err = app.Invoke(context.Background(), counter{})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped node error", err)
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error %q should name the node", err)
	}
}

func TestGraph_Stream(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("a", addNode("a", 1))
	g.AddNode("b", addNode("b", 1))
	g.AddEdge("a", "b")
	g.AddEdge("b", graph.END)
	g.SetEntryPoint("a")

	app, err := g.Compile()
	if err != nil {
		t.Fatal(err)
	}

	stream := app.Stream(context.Background(), counter{})
	defer stream.Close()

	events, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Node != "a" || events[0].State.Trail != "a" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Node != "b" || events[1].State.Trail != "ab" {
		t.Errorf("events[1] = %+v", events[1])
	}
}

func TestGraph_RecursionLimit(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("loop", addNode("l", 1))
	g.AddConditionalEdges("loop",
		func(ctx context.Context, s counter) string { return "again" },
		map[string]string{"again": "loop", "end": graph.END},
	)
	g.SetEntryPoint("loop")

	app, err := g.Compile()
	if err != nil {
		t.Fatal(err)
	}

	_, err = app.Invoke(context.Background(), counter{}, graph.WithRecursionLimit(7))
	if !errors.Is(err, graph.ErrRecursionLimit) {
		t.Errorf("error = %v, want ErrRecursionLimit", err)
	}
}

func TestGraph_CheckpointAndResumeFinishedThread(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("a", addNode("a", 5))
	g.AddEdge("a", graph.END)
	g.SetEntryPoint("a")

	saver := graph.NewMemorySaver[counter]()
	app, err := g.Compile(graph.WithCheckpointer(saver))
	if err != nil {
		t.Fatal(err)
	}

	out, err := app.Invoke(context.Background(), counter{N: 1}, graph.WithThreadID("t1"))
	if err != nil {
		t.Fatal(err)
	}
	if out.N != 6 {
		t.Errorf("out.N = %d", out.N)
	}

	// Zero input on the same thread returns the checkpointed final state.
	again, err := app.Invoke(context.Background(), counter{}, graph.WithThreadID("t1"))
	if err != nil {
		t.Fatal(err)
	}
	if again.N != 6 {
		t.Errorf("resumed N = %d, want 6", again.N)
	}

	// A fresh thread starts from the provided state.
	fresh, err := app.Invoke(context.Background(), counter{N: 10}, graph.WithThreadID("t2"))
	if err != nil {
		t.Fatal(err)
	}
	if fresh.N != 15 {
		t.Errorf("fresh N = %d, want 15", fresh.N)
	}
}

func TestGraph_InterruptBeforeAndResume(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("plan", addNode("p", 1))
	g.AddNode("act", addNode("x", 100))
	g.AddEdge("plan", "act")
	g.AddEdge("act", graph.END)
	g.SetEntryPoint("plan")

	saver := graph.NewMemorySaver[counter]()
	app, err := g.Compile(
		graph.WithCheckpointer(saver),
		graph.WithInterruptBefore[counter]("act"),
	)
	if err != nil {
		t.Fatal(err)
	}

	// First run stops before "act" with the planned state intact.
	_, err = app.Invoke(context.Background(), counter{N: 1}, graph.WithThreadID("hitl"))
	if !errors.Is(err, graph.ErrInterrupted) {
		t.Fatalf("error = %v, want ErrInterrupted", err)
	}
	cp, err := saver.Latest(context.Background(), "hitl")
	if err != nil || cp == nil {
		t.Fatalf("checkpoint missing: %v", err)
	}
	if cp.Next != "act" || cp.State.N != 2 {
		t.Errorf("checkpoint = %+v", cp)
	}

	// Resuming with zero input runs the pending node to completion.
	out, err := app.Invoke(context.Background(), counter{}, graph.WithThreadID("hitl"))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if out.N != 102 || out.Trail != "px" {
		t.Errorf("out = %+v", out)
	}
}

func TestMessageState_AddMessages(t *testing.T) {
	s1 := graph.MessageState{}
	s2 := graph.AddMessages(s1, agentic.NewUserMessage("hi"))
	s3 := graph.AddMessages(s2, agentic.NewAssistantMessage("hello"))

	if len(s1.Messages) != 0 || len(s2.Messages) != 1 || len(s3.Messages) != 2 {
		t.Errorf("lens = %d %d %d", len(s1.Messages), len(s2.Messages), len(s3.Messages))
	}
	last := s3.LastMessage()
	if last.Text() != "hello" {
		t.Errorf("LastMessage = %q", last.Text())
	}
}
