// Package advisor asks a generative model for spending advice and category
// suggestions, with an offline keyword fallback for the latter.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	client *genai.Client
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator builds a client for apiKey. An empty key falls back to
// the GOOGLE_API_KEY / GEMINI_API_KEY environment the genai package reads.
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	var cfg *genai.ClientConfig
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini client not configured")
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
