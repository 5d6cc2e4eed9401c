package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) *AnthropicClient {
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5)
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicClient{
		client: &client,
		model:  anthropic.Model(model),
	}
}

func (c *AnthropicClient) Model() string {
	return string(c.model)
}

func (c *AnthropicClient) Complete(ctx context.Context, segments []Segment) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(segments))
	for _, s := range segments {
		switch s := s.(type) {
		case TextSegment:
			blocks = append(blocks, anthropic.NewTextBlock(s.Text))
		default:
			return "", unsupportedSegment(s)
		}
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})

	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	return cleanTextResponse(sb.String()), nil
}
