// Package llm evaluates candidate articles through a generative model
// provider and parses the structured results.
package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"dailynews/internal/logger"
)

// DefaultModel is used when GPT_MODEL_NAME is unset.
const DefaultModel = "gemini-2.0-flash"

// Provider issues one evaluation request: an opaque system prompt plus
// the newline-delimited item content, returning the raw model text.
type Provider interface {
	Request(ctx context.Context, prompt, content string) (string, error)
}

// GeminiProvider talks to the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewProvider builds the provider selected by AI_PROVIDER (only
// "gemini" is supported). Missing credentials are a fatal config error.
func NewProvider(ctx context.Context) (Provider, error) {
	provider := os.Getenv("AI_PROVIDER")
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q", provider)
	}
	return NewGeminiProvider(ctx)
}

// NewGeminiProvider reads GPT_API_KEY (falling back to GEMINI_API_KEY)
// and GPT_MODEL_NAME from the environment.
func NewGeminiProvider(ctx context.Context) (*GeminiProvider, error) {
	apiKey := os.Getenv("GPT_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GPT_API_KEY environment variable not set")
	}

	model := os.Getenv("GPT_MODEL_NAME")
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info("gemini provider ready", "model", model)
	return &GeminiProvider{client: client, model: model}, nil
}

// Request sends the prompt and content as a single user turn.
func (p *GeminiProvider) Request(ctx context.Context, prompt, content string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt + "\n\n" + content}},
		Role:  "user",
	}}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
