package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient provides a deterministic LLMClient implementation for testing
// the pipeline without network access.
type MockClient struct {
	mu        sync.Mutex
	response  string
	tokens    int
	err       error
	failTimes int
	calls     int
	delay     time.Duration
}

// NewMockClient creates a mock client that returns the given response.
func NewMockClient(response string, tokens int) *MockClient {
	return &MockClient{response: response, tokens: tokens}
}

// GetProviderName returns "mock".
func (m *MockClient) GetProviderName() string { return "mock" }

// IsConfigured always returns true.
func (m *MockClient) IsConfigured() bool { return true }

// SetError makes every subsequent call fail with err.
func (m *MockClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailTimes makes the next n calls fail before succeeding.
func (m *MockClient) FailTimes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTimes = n
}

// SetDelay makes every subsequent call block for d before returning,
// simulating a slow generation service.
func (m *MockClient) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls reports how many completions were attempted.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete returns the configured response or error, after any configured
// delay.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	m.mu.Lock()
	m.calls++
	delay := m.delay
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}
	if m.failTimes > 0 {
		m.failTimes--
		m.mu.Unlock()
		return nil, fmt.Errorf("mock transient failure")
	}
	response, tokens := m.response, m.tokens
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return &Reply{Content: response, TokensUsed: tokens, Model: req.Model}, nil
}
