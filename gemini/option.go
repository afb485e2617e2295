// Copyright (c) Microsoft. All rights reserved.

package gemini

// clientConfig holds resolved configuration for the Gemini client.
type clientConfig struct {
	model string
}

// Option configures a Gemini [Client].
type Option func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}
