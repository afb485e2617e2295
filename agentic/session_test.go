// Copyright (c) Microsoft. All rights reserved.

package agentic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/microsoft/agentic-ai/agentic"
)

func TestSessionIDs(t *testing.T) {
	s := agentic.NewSession()
	if s.ID() == "" {
		t.Fatal("session ID should not be empty")
	}

	named := agentic.NewSession(agentic.WithSessionID("user-42"))
	if named.ID() != "user-42" {
		t.Errorf("ID = %q, want user-42", named.ID())
	}
}

func TestSessionStoreLocked(t *testing.T) {
	store := agentic.NewInMemoryStore()
	s := agentic.NewSession(agentic.WithSessionStore(store))

	err := s.SetStore(agentic.NewInMemoryStore())
	if err == nil {
		t.Fatal("expected error replacing an existing store")
	}
	if !errors.Is(err, agentic.ErrSessionModeLocked) {
		t.Errorf("error = %v, want ErrSessionModeLocked", err)
	}
}

func TestSessionSetStore(t *testing.T) {
	s := agentic.NewSession()
	if s.Store() != nil {
		t.Fatal("new session should have no store")
	}
	store := agentic.NewInMemoryStore()
	if err := s.SetStore(store); err != nil {
		t.Fatalf("SetStore: %v", err)
	}
	if s.Store() != store {
		t.Error("Store() should return the store that was set")
	}
}

func TestInMemoryStore(t *testing.T) {
	store := agentic.NewInMemoryStore()
	ctx := context.Background()

	// Initially empty
	msgs, err := store.ListMessages(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("initial len = %d", len(msgs))
	}

	// Add messages
	err = store.AddMessages(ctx, []agentic.Message{
		agentic.NewUserMessage("hello"),
		agentic.NewAssistantMessage("hi there"),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	msgs, err = store.ListMessages(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("len = %d, want 2", len(msgs))
	}
	if msgs[0].Text() != "hello" {
		t.Errorf("[0].Text() = %q", msgs[0].Text())
	}

	// ListMessages returns a copy
	msgs[0] = agentic.NewAssistantMessage("modified")
	original, _ := store.ListMessages(ctx)
	if original[0].Text() != "hello" {
		t.Error("ListMessages should return a copy")
	}
}

func TestSessionSerialize(t *testing.T) {
	store := agentic.NewInMemoryStore()
	if err := store.AddMessages(context.Background(), []agentic.Message{
		agentic.NewUserMessage("remember me"),
	}); err != nil {
		t.Fatal(err)
	}
	s := agentic.NewSession(agentic.WithSessionStore(store))

	state, err := s.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	if state["id"] != s.ID() {
		t.Errorf("id = %v", state["id"])
	}
	if _, ok := state["store"]; !ok {
		t.Error("serialized state should include the store")
	}
}
