// Copyright (c) Microsoft. All rights reserved.

package ollama

import "net/http"

// clientConfig holds resolved configuration for the Ollama client.
type clientConfig struct {
	host       string
	model      string
	httpClient *http.Client
}

// Option configures an Ollama [Client].
type Option func(*clientConfig)

// WithHost overrides the server address (takes precedence over OLLAMA_HOST).
func WithHost(host string) Option {
	return func(c *clientConfig) { c.host = host }
}

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}
