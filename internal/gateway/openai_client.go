package gateway

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"edumentor/internal/guard"
	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// OpenAIClient implements the LLMClient interface for OpenAI's API.
// The underlying SDK client is created lazily on first use.
type OpenAIClient struct {
	apiKey string
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client with lazy initialization.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *OpenAIClient) GetProviderName() string {
	return "openai"
}

// IsConfigured returns true if the client has an API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *OpenAIClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("openai API key not configured")
	}

	client := openai.NewClient(option.WithAPIKey(c.apiKey))
	c.client = &client

	logger.Debug("OpenAI client initialized", "provider", "openai")
	return nil
}

// Complete sends one chat completion request to OpenAI and extracts the reply.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	logger.Debug("OpenAI completion starting", "model", req.Model)

	if err := c.initializeClientIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.History {
		switch msg.Role {
		case tutortypes.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case tutortypes.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			continue
		}
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	tokensUsed := int(completion.Usage.TotalTokens)
	if tokensUsed == 0 {
		tokensUsed = guard.EstimateTokens(content)
	}

	logger.Debug("OpenAI response received", "content_length", len(content), "tokens_used", tokensUsed)
	return &Reply{Content: content, TokensUsed: tokensUsed, Model: req.Model}, nil
}
