package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Complete sends a prompt to GenerateContent.
func (g *Gemini) Complete(ctx context.Context, prompt string) (*Response, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini api: %w", err)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Response{
		Content:    resp.Text(),
		Provider:   "gemini",
		TokensUsed: tokens,
	}, nil
}
