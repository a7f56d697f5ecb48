// Package search wraps the generative-search collaborator: a Gemini model
// that answers a dated prompt with free-form text which hopefully contains a
// JSON array of hackathons. Callers must assume any individual response is
// not valid structured data.
package search

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient talks to the Gemini API. A fresh API client is created per
// call so each attempt carries its own timeout and no connection state leaks
// across retries.
type GeminiClient struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Config  *QueryConfig
}

func NewGeminiClient(apiKey, model string, cfg *QueryConfig) *GeminiClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClient{
		APIKey:  apiKey,
		Model:   model,
		Timeout: 120 * time.Second,
		Config:  cfg,
	}
}

// Search asks the model for up to limit currently active hackathons and
// returns the raw response text.
func (c *GeminiClient) Search(ctx context.Context, limit int) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("gemini: missing API key")
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.Model)
	model.SetTemperature(0.2)

	prompt := BuildPrompt(c.Config, time.Now(), limit)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := sb.String()
	log.Printf("[gemini] response: %d chars", len(out))
	return out, nil
}
