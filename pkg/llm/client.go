package llm

import (
	"context"
	"fmt"
	"strings"
)

// Segment is one ordered piece of a prompt.
type Segment interface {
	segment()
}

type TextSegment struct {
	Text string
}

func (TextSegment) segment() {}

// Completer sends a prompt to a language model and returns its text answer.
type Completer interface {
	Complete(ctx context.Context, segments []Segment) (string, error)
	Model() string
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// New builds the Completer for a provider. An empty model selects the
// provider's default.
func New(ctx context.Context, provider, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for %s", provider)
	}

	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(apiKey, model), nil
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey, model), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (valid: openai, anthropic, gemini)", provider)
	}
}

func unsupportedSegment(s Segment) error {
	return fmt.Errorf("unsupported prompt segment %T", s)
}

// cleanTextResponse strips whitespace and a wrapping code fence that some
// models put around plain-text answers.
func cleanTextResponse(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") || !strings.HasSuffix(content, "```") || len(content) < 6 {
		return content
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")
	// Drop a language tag on the opening fence line.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], " \t") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}
