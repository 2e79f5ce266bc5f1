package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeStrategy extracts entities through the Anthropic chat-completion
// API. Used when a hosted model is configured instead of, or ahead of, a
// local inference server.
type ClaudeStrategy struct {
	client      *anthropic.Client
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewClaudeStrategy creates a Claude-backed extraction strategy.
func NewClaudeStrategy(apiKey, model string, temperature float64, maxTokens int, logger *slog.Logger) *ClaudeStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeStrategy{
		client:      &c,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Name identifies the strategy in logs.
func (*ClaudeStrategy) Name() string { return "claude" }

// Extract sends the JSON-only extraction prompt and parses the reply.
func (c *ClaudeStrategy) Extract(ctx context.Context, subject, text string) (Result, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(subject, text)),
			),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}

	var responseText string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			responseText = resp.Content[i].Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("empty response from Claude")
	}

	res, err := parseResponse(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("claude extraction", "model", c.model, "subject", subject, "values", res.Total())
	return res, nil
}
