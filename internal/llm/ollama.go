package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is where a local Ollama listens out of the box.
const DefaultOllamaURL = "http://localhost:11434"

// Ollama calls a local Ollama instance through its generate API.
type Ollama struct {
	url    string
	model  string
	client *api.Client
}

// NewOllama creates a new Ollama client. An empty baseURL uses DefaultOllamaURL.
func NewOllama(baseURL, model string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	return &Ollama{
		url:    baseURL,
		model:  model,
		client: api.NewClient(u, &http.Client{Timeout: 120 * time.Second}),
	}, nil
}

// Complete sends a non-streaming generate request.
func (o *Ollama) Complete(ctx context.Context, prompt string) (*Response, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0,
			"num_predict": 2048,
		},
	}

	var result api.GenerateResponse
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		result = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama api: %w", err)
	}

	return &Response{
		Content:    result.Response,
		Provider:   "ollama",
		TokensUsed: result.PromptEvalCount + result.EvalCount,
	}, nil
}
