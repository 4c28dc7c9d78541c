package gateway

import (
	"fmt"
	"sync"

	"edumentor/internal/logger"
)

// ClientFactory creates and caches LLM clients keyed by provider and API
// key, so repeated lookups reuse the lazily initialized SDK client.
type ClientFactory struct {
	mutex   sync.RWMutex
	clients map[string]LLMClient
}

// NewClientFactory creates an empty client factory.
func NewClientFactory() *ClientFactory {
	return &ClientFactory{clients: make(map[string]LLMClient)}
}

// ClientFor returns a client for the given provider and API key, creating
// and caching it on first use.
func (f *ClientFactory) ClientFor(provider, apiKey string) (LLMClient, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty for provider '%s'", provider)
	}

	cacheKey := fmt.Sprintf("%s:%s", provider, apiKey)

	f.mutex.RLock()
	if client, exists := f.clients[cacheKey]; exists {
		f.mutex.RUnlock()
		logger.Debug("Returning cached provider client", "provider", provider)
		return client, nil
	}
	f.mutex.RUnlock()

	f.mutex.Lock()
	defer f.mutex.Unlock()

	// Double-check after acquiring the write lock.
	if client, exists := f.clients[cacheKey]; exists {
		return client, nil
	}

	var client LLMClient
	switch provider {
	case "anthropic":
		client = NewAnthropicClient(apiKey)
	case "openai":
		client = NewOpenAIClient(apiKey)
	case "gemini":
		client = NewGeminiClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider '%s'. Supported providers: anthropic, openai, gemini", provider)
	}

	f.clients[cacheKey] = client
	logger.Debug("Provider client created", "provider", provider)
	return client, nil
}
