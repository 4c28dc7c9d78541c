package gateway

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"edumentor/internal/guard"
	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// AnthropicClient implements the LLMClient interface for Anthropic's API.
// The underlying SDK client is created lazily on first use.
type AnthropicClient struct {
	apiKey string
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client with lazy initialization.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *AnthropicClient) GetProviderName() string {
	return "anthropic"
}

// IsConfigured returns true if the client has an API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *AnthropicClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	c.client = &client

	logger.Debug("Anthropic client initialized", "provider", "anthropic")
	return nil
}

// Complete sends one message request to Anthropic and extracts the reply.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	logger.Debug("Anthropic completion starting", "model", req.Model)

	if err := c.initializeClientIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to initialize Anthropic client: %w", err)
	}

	messages := convertHistoryToAnthropic(req.History)
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no response content returned")
	}

	var content string
	for _, block := range message.Content {
		content += block.Text
	}
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	tokensUsed := int(message.Usage.InputTokens + message.Usage.OutputTokens)
	if tokensUsed == 0 {
		tokensUsed = guard.EstimateTokens(content)
	}

	logger.Debug("Anthropic response received", "content_length", len(content), "tokens_used", tokensUsed)
	return &Reply{Content: content, TokensUsed: tokensUsed, Model: req.Model}, nil
}

// convertHistoryToAnthropic converts conversation history to Anthropic's
// message format. Unknown roles are skipped.
func convertHistoryToAnthropic(history []tutortypes.ChatMessage) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case tutortypes.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case tutortypes.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			continue
		}
	}
	return messages
}
