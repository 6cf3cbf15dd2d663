package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"memoir-rag/internal/config"
)

// Client makes single chat-completion calls. One call per query, no retries,
// no streaming.
type Client struct {
	llm         *openai.LLM
	temperature float64
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.InferenceModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, temperature: cfg.Temperature}, nil
}

// Generate sends the system instruction plus the user message and returns
// the completion text.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: system}},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: user}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return res.Choices[0].Content, nil
}
