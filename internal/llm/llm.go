// Package llm talks to generative-text providers.
package llm

import (
	"context"
	"fmt"
)

// Request is one prompt exchange.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	// JSONMode asks the provider to constrain output to a JSON object.
	JSONMode bool
}

// Response holds the generated text.
type Response struct {
	Content string
	Model   string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API returned HTTP %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s API returned HTTP %d: %s", e.Provider, e.Status, e.Message)
}
