package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// DefaultChunkDelay is the inter-chunk pacing delay for simulated streaming.
const DefaultChunkDelay = 50 * time.Millisecond

// ChunkHandler receives streaming chunks. Returning an error stops emission.
type ChunkHandler func(chunk tutortypes.StreamChunk) error

// Gateway wraps one LLMClient with uniform error wrapping and a simulated
// streaming emitter. The gateway itself never retries; transport and
// service errors are wrapped and propagated for the pipeline's
// retry/fallback handling.
type Gateway struct {
	client     LLMClient
	chunkDelay time.Duration
}

// New creates a Gateway over the given client. A chunkDelay of zero or
// below falls back to DefaultChunkDelay.
func New(client LLMClient, chunkDelay time.Duration) *Gateway {
	if chunkDelay <= 0 {
		chunkDelay = DefaultChunkDelay
	}
	return &Gateway{client: client, chunkDelay: chunkDelay}
}

// Provider returns the wrapped client's provider name.
func (g *Gateway) Provider() string {
	return g.client.GetProviderName()
}

// Generate issues exactly one completion call.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Reply, error) {
	logger.PipelineStage("generation", "provider", g.client.GetProviderName(), "model", req.Model)

	reply, err := g.client.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	return reply, nil
}

// GenerateStreaming performs exactly one non-streaming call, then re-emits
// the result as an incremental word-by-word sequence. Each chunk carries
// the cumulative text so far, a monotonically increasing index, and a
// completion flag set only on the last chunk, with a fixed pacing delay
// between chunks. Emission stops as soon as ctx is cancelled or the
// handler returns an error; the final reply is returned either way once
// the underlying call has succeeded.
func (g *Gateway) GenerateStreaming(ctx context.Context, req Request, onChunk ChunkHandler) (*Reply, error) {
	reply, err := g.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(reply.Content)
	if len(words) == 0 {
		// Preserve the streaming contract for degenerate content.
		if err := onChunk(tutortypes.StreamChunk{Content: reply.Content, Index: 0, Done: true}); err != nil {
			return reply, fmt.Errorf("stream handler failed: %w", err)
		}
		return reply, nil
	}

	var cumulative strings.Builder
	for i, word := range words {
		if i > 0 {
			cumulative.WriteString(" ")

			select {
			case <-ctx.Done():
				logger.Debug("Streaming cancelled", "emitted_chunks", i)
				return reply, ctx.Err()
			case <-time.After(g.chunkDelay):
			}
		}
		cumulative.WriteString(word)

		chunk := tutortypes.StreamChunk{
			Content: cumulative.String(),
			Index:   i,
			Done:    i == len(words)-1,
		}
		if err := onChunk(chunk); err != nil {
			return reply, fmt.Errorf("stream handler failed: %w", err)
		}
	}

	return reply, nil
}
