// Copyright (c) Microsoft. All rights reserved.

// Package graph provides a state-graph execution engine: nodes transform a
// shared typed state, edges (plain or conditional) route between them, and a
// compiled graph runs as an app with invoke and stream modes, optional
// checkpointing per thread, and interrupt points for human-in-the-loop flows.
//
//	g := graph.NewStateGraph[graph.MessageState]()
//	g.AddNode("chat", chatNode)
//	g.AddNode("tools", toolNode)
//	g.AddConditionalEdges("chat", route, map[string]string{
//	    "tools": "tools",
//	    "end":   graph.END,
//	})
//	g.AddEdge("tools", "chat")
//	g.SetEntryPoint("chat")
//
//	app, err := g.Compile(graph.WithCheckpointer(graph.NewMemorySaver[graph.MessageState]()))
//	out, err := app.Invoke(ctx, initial, graph.WithThreadID("thread-1"))
package graph
