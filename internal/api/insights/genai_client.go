package insights

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// Generator is the generative-text contract the orchestrator calls. The
// production implementation wraps the Gemini API; tests substitute mocks.
type Generator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

var _ Generator = (*AIClient)(nil)

// AIClient wraps the Gemini client with the fixed generation settings
// used for insight generation: low temperature, bounded output, JSON
// response type.
type AIClient struct {
	client *genai.Client
}

func NewAIClient(ctx context.Context) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{client: client}, nil
}

func (ai *AIClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.3),
		MaxOutputTokens:  1024,
		ResponseMIMEType: "application/json",
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
	}

	response, err := ai.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var txt string
	for _, candidate := range response.Candidates {
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			txt = candidate.Content.Parts[0].Text
			break
		}
	}
	if txt == "" {
		return "", fmt.Errorf("no valid content candidate from model %s", model)
	}
	return txt, nil
}
