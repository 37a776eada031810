package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/trip-guide/internal/types"
)

// GeminiGenerator produces guide text with Google Gemini. It is the
// primary provider in the default fallback chain.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// DefaultGeminiModel balances quality and latency for guide narration.
const DefaultGeminiModel = "gemini-2.5-flash"

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Name returns the provenance identifier for this provider.
func (g *GeminiGenerator) Name() string { return "gemini" }

// Generate asks Gemini for the guide narrative as JSON.
func (g *GeminiGenerator) Generate(ctx context.Context, facts *types.TripFacts, prefs types.CanonicalPreferences) (*types.GuideText, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(facts, prefs)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, err
	}

	var out types.GuideText
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse guide text JSON: %w", err)
	}
	if out.Summary == "" {
		return nil, fmt.Errorf("empty summary in response")
	}
	return &out, nil
}

// Close releases resources held by the underlying client.
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
