// Copyright (c) Microsoft. All rights reserved.

// Package ollama provides a [Client] implementation of
// [agentic.ChatClient] backed by a local Ollama server.
//
// Create a client and pass it to [agentic.NewAgent]:
//
//	client, err := ollama.New(ollama.WithModel("llama3.2"))
//	if err != nil { ... }
//
//	agent := agentic.NewAgent(client)
//
// The server address comes from OLLAMA_HOST, falling back to
// [DefaultHost]; override it with [WithHost].
//
// Local models do not speak a structured tool-call protocol, so the
// client exchanges plain text only. Pair it with a middleware that
// recognizes tool calls written as JSON text (see the local sample) to
// run the agent tool loop against a local model.
package ollama
