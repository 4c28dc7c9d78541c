package gateway

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"edumentor/internal/guard"
	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// GeminiClient implements the LLMClient interface for Google Gemini.
// The underlying SDK client is created lazily on first use.
type GeminiClient struct {
	apiKey string
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *GeminiClient) GetProviderName() string {
	return "gemini"
}

// IsConfigured returns true if the client has an API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) error {
	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("google API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: c.apiKey})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client

	logger.Debug("Gemini client initialized", "provider", "gemini")
	return nil
}

// Complete sends one generation request to Gemini and extracts the reply.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	logger.Debug("Gemini completion starting", "model", req.Model)

	if err := c.initializeClientIfNeeded(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	contents := convertHistoryToGemini(req.History)
	contents = append(contents, &genai.Content{
		Parts: []*genai.Part{{Text: req.UserPrompt}},
		Role:  "user",
	})

	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	content := extractGeminiText(result)
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	tokensUsed := 0
	if result.UsageMetadata != nil {
		tokensUsed = int(result.UsageMetadata.TotalTokenCount)
	}
	if tokensUsed == 0 {
		tokensUsed = guard.EstimateTokens(content)
	}

	logger.Debug("Gemini response received", "content_length", len(content), "tokens_used", tokensUsed)
	return &Reply{Content: content, TokensUsed: tokensUsed, Model: req.Model}, nil
}

// convertHistoryToGemini converts conversation history to Gemini's content
// format. Gemini uses "model" for the assistant role.
func convertHistoryToGemini(history []tutortypes.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		var role string
		switch msg.Role {
		case tutortypes.RoleUser:
			role = "user"
		case tutortypes.RoleAssistant:
			role = "model"
		default:
			continue
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: msg.Content}},
			Role:  role,
		})
	}
	return contents
}

// extractGeminiText concatenates the text parts of all candidates,
// skipping thinking blocks and empty parts.
func extractGeminiText(result *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text == "" || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
