// Copyright (c) Microsoft. All rights reserved.

package anthropic

import "net/http"

// clientConfig holds resolved configuration for the Anthropic client.
type clientConfig struct {
	baseURL    string
	model      string
	maxTokens  int64
	httpClient *http.Client
}

// Option configures an Anthropic [Client].
type Option func(*clientConfig)

// WithBaseURL overrides the API base URL (e.g., for proxies).
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithMaxTokens sets the default max-token budget for requests.
// The Messages API requires one; [defaultMaxTokens] applies otherwise.
func WithMaxTokens(n int64) Option {
	return func(c *clientConfig) { c.maxTokens = n }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}
