package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	return newGeminiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGeminiClient(ctx context.Context, cfg *genai.ClientConfig, model string) (*GeminiClient, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) Complete(ctx context.Context, segments []Segment) (string, error) {
	parts, err := geminiParts(segments)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no response from gemini")
	}

	return cleanTextResponse(text), nil
}

func geminiParts(segments []Segment) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(segments))
	for _, s := range segments {
		switch s := s.(type) {
		case TextSegment:
			parts = append(parts, genai.NewPartFromText(s.Text))
		default:
			return nil, unsupportedSegment(s)
		}
	}
	return parts, nil
}
