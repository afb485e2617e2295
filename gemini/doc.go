// Copyright (c) Microsoft. All rights reserved.

// Package gemini provides a [Client] implementation of
// [agentic.ChatClient] backed by the Google Gemini API.
//
// Create a client and pass it to [agentic.NewAgent]:
//
//	client, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"),
//	    gemini.WithModel("gemini-1.5-pro"),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	agent := agentic.NewAgent(client)
//
// Tool declarations are translated into function declarations, and
// function call parts in replies surface as function call contents.
// The Gemini API correlates function responses by name rather than
// call ID, so the client assigns fresh call IDs to outgoing calls and
// resolves them back to names when results return.
package gemini
