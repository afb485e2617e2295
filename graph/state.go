// Copyright (c) Microsoft. All rights reserved.

package graph

import "github.com/microsoft/agentic-ai/agentic"

// MessageState is a ready-made state type for conversational graphs: a
// message transcript with append semantics.
type MessageState struct {
	Messages []agentic.Message `json:"messages"`
}

// AddMessages returns a copy of the state with msgs appended. Nodes should
// use it instead of mutating the slice in place, so earlier checkpoints
// stay intact.
func AddMessages(s MessageState, msgs ...agentic.Message) MessageState {
	out := make([]agentic.Message, 0, len(s.Messages)+len(msgs))
	out = append(out, s.Messages...)
	out = append(out, msgs...)
	return MessageState{Messages: out}
}

// LastMessage returns the most recent message, or a zero Message if empty.
func (s MessageState) LastMessage() agentic.Message {
	if len(s.Messages) == 0 {
		return agentic.Message{}
	}
	return s.Messages[len(s.Messages)-1]
}
