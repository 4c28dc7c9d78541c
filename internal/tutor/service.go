// Package tutor orchestrates the tutoring request pipeline: input guard,
// admission control, prompt composition, generation, response analysis,
// and conversation-state updates. Recoverable failures degrade to canned,
// context-aware fallback responses so the dialogue never breaks mid-lesson.
package tutor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"edumentor/internal/analytics"
	"edumentor/internal/analyzer"
	"edumentor/internal/config"
	"edumentor/internal/flow"
	"edumentor/internal/gateway"
	"edumentor/internal/governor"
	"edumentor/internal/guard"
	"edumentor/internal/logger"
	"edumentor/internal/prompt"
	"edumentor/internal/session"
	"edumentor/pkg/tutortypes"
)

// Confidence levels reported on responses.
const (
	generatedConfidence = 0.9
	fallbackConfidence  = 0.3
)

// Service is the tutoring pipeline. One Service handles many concurrent
// sessions. Each managed session carries an exchange mutex held across the
// whole history-read, generate, state-update, append sequence, so
// overlapping requests for one session apply in the order they were
// admitted while distinct sessions proceed concurrently.
type Service struct {
	cfg      *config.Config
	governor *governor.Governor
	composer *prompt.Composer
	gw       *gateway.Gateway
	tracker  *flow.Tracker
	sessions *session.Manager

	exchangeMu sync.Mutex
	exchanges  map[string]*sync.Mutex
}

// New creates a Service over the given generation client, with admission
// control configured from cfg and a running bucket sweeper. Call Close
// when done.
func New(cfg *config.Config, client gateway.LLMClient) *Service {
	gov := governor.New(governor.Options{
		RequestsPerWindow: cfg.RequestsPerMinute,
		Window:            cfg.RateLimitWindow,
		SweepInterval:     cfg.SweepInterval,
		DailyTokenCap:     cfg.DailyTokenCap,
		MonthlyTokenCap:   cfg.MonthlyTokenCap,
	}, nil)
	gov.StartSweeper()
	return NewWithGovernor(cfg, client, gov)
}

// NewWithGovernor creates a Service with an externally constructed
// governor. Used by New and by tests that need an injectable clock.
func NewWithGovernor(cfg *config.Config, client gateway.LLMClient, gov *governor.Governor) *Service {
	return &Service{
		cfg:       cfg,
		governor:  gov,
		composer:  prompt.NewComposer(cfg.MaxInputLength),
		gw:        gateway.New(client, cfg.ChunkDelay),
		tracker:   flow.NewTracker(),
		sessions:  session.NewManager(),
		exchanges: make(map[string]*sync.Mutex),
	}
}

// exchangeLock returns the mutex serializing full exchanges for one
// managed session, creating it on first use.
func (s *Service) exchangeLock(sessionID string) *sync.Mutex {
	s.exchangeMu.Lock()
	defer s.exchangeMu.Unlock()

	mu, ok := s.exchanges[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		s.exchanges[sessionID] = mu
	}
	return mu
}

// Close stops background work.
func (s *Service) Close() {
	s.governor.Stop()
}

// Sessions exposes the session manager for history, export, and analytics.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// ConversationState returns a copy of the session's live state vector.
func (s *Service) ConversationState(sessionID string) tutortypes.ConversationState {
	return s.tracker.State(sessionID)
}

// SessionAnalytics computes the on-demand analytics bundle for a managed
// session from its message log and live conversation state.
func (s *Service) SessionAnalytics(sessionID string) (analytics.SessionAnalytics, error) {
	messages, err := s.sessions.Messages(sessionID)
	if err != nil {
		return analytics.SessionAnalytics{}, err
	}
	state := s.tracker.State(sessionID)
	return analytics.Aggregate(messages, &state), nil
}

// TokenBudgetStatus reports the shared token ledger.
func (s *Service) TokenBudgetStatus() tutortypes.TokenBudget {
	return s.governor.Status()
}

// ResetDailyTokenBudget zeroes the daily ledger. Administrative; meant to
// be driven by an external scheduler, never by the pipeline itself.
func (s *Service) ResetDailyTokenBudget() {
	s.governor.ResetDaily()
}

// GenerateResponse runs one full tutoring exchange and returns the
// structured response. Fatal failures (invalid input, suspected prompt
// injection) return an error; recoverable failures (rate limit, budget,
// generation after retries) return a fallback response with a nil error.
func (s *Service) GenerateResponse(ctx context.Context, message string, lctx *tutortypes.LearningContext, history []tutortypes.ChatMessage, persona *tutortypes.AIPersona) (*tutortypes.AIResponse, error) {
	return s.generate(ctx, "", message, lctx, history, persona)
}

// generate is the shared single-shot pipeline. stateKey identifies the
// conversation state to update; empty means "key by user", which is the
// session identity when callers manage history themselves.
func (s *Service) generate(ctx context.Context, stateKey, message string, lctx *tutortypes.LearningContext, history []tutortypes.ChatMessage, persona *tutortypes.AIPersona) (*tutortypes.AIResponse, error) {
	sanitized, err := s.admit(message, lctx)
	if err != nil {
		if fallback := s.fallbackFor(err, lctx); fallback != nil {
			return fallback, nil
		}
		return nil, err
	}
	if stateKey == "" {
		stateKey = lctx.UserID
	}

	req := s.buildRequest(sanitized, lctx, history, persona)

	reply, err := s.generateWithRetries(ctx, req)
	if err != nil {
		logger.Error("Generation failed after retries", "error", err)
		return s.fallbackFor(tutortypes.NewGenerationError("generation service unavailable", err), lctx), nil
	}

	s.governor.Record(reply.TokensUsed)
	return s.finishExchange(stateKey, lctx, sanitized, reply), nil
}

// GenerateStreamingResponse behaves like GenerateResponse but re-emits the
// generated content through onChunk as an incremental sequence before
// returning the same structured response. If ctx is cancelled mid-stream,
// emission stops; the already-recorded usage stands and no further
// accounting or state updates happen.
func (s *Service) GenerateStreamingResponse(ctx context.Context, message string, lctx *tutortypes.LearningContext, history []tutortypes.ChatMessage, persona *tutortypes.AIPersona, onChunk gateway.ChunkHandler) (*tutortypes.AIResponse, error) {
	sanitized, err := s.admit(message, lctx)
	if err != nil {
		if fallback := s.fallbackFor(err, lctx); fallback != nil {
			return s.streamFallback(ctx, fallback, onChunk)
		}
		return nil, err
	}
	stateKey := lctx.UserID

	req := s.buildRequest(sanitized, lctx, history, persona)

	reply, streamErr := s.gw.GenerateStreaming(ctx, req, onChunk)
	if reply != nil {
		s.governor.Record(reply.TokensUsed)
	}
	if streamErr != nil {
		if reply != nil {
			// The underlying call succeeded; only emission was cut short.
			logger.Debug("Streaming interrupted", "error", streamErr)
			return nil, streamErr
		}
		logger.Error("Streaming generation failed", "error", streamErr)
		fallback := s.fallbackFor(tutortypes.NewGenerationError("generation service unavailable", streamErr), lctx)
		return s.streamFallback(ctx, fallback, onChunk)
	}

	return s.finishExchange(stateKey, lctx, sanitized, reply), nil
}

// StartSession opens a managed session for the given user.
func (s *Service) StartSession(userID string) *session.Session {
	return s.sessions.Create(userID)
}

// EndSession discards a managed session and its conversation state.
func (s *Service) EndSession(sessionID string) error {
	s.tracker.Discard(sessionID)
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.exchangeMu.Lock()
	delete(s.exchanges, sessionID)
	s.exchangeMu.Unlock()
	return nil
}

// Converse runs one exchange against a managed session: history is read
// from the session log, and both the learner message and the generated
// reply are appended to it. The session's exchange mutex is held for the
// whole sequence, so overlapping calls for one session read, generate,
// update state, and append strictly in admission order.
func (s *Service) Converse(ctx context.Context, sessionID, message string, lctx *tutortypes.LearningContext, persona *tutortypes.AIPersona) (*tutortypes.AIResponse, error) {
	mu := s.exchangeLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	history, err := s.sessions.Messages(sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := s.generate(ctx, sessionID, message, lctx, history, persona)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.AppendMessage(sessionID, tutortypes.RoleUser, message, guard.EstimateTokens(message), lctx); err != nil {
		return nil, err
	}
	if _, err := s.sessions.AppendMessage(sessionID, tutortypes.RoleAssistant, resp.Content, resp.Metadata.TokensUsed, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// admit runs the guard and the governor, in that order: sanitize,
// injection screening, then rate-limit and budget admission.
func (s *Service) admit(message string, lctx *tutortypes.LearningContext) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", tutortypes.NewInputRejectedError("message is empty")
	}
	if lctx == nil || lctx.UserID == "" {
		return "", tutortypes.NewInputRejectedError("learning context with user id is required")
	}

	sanitized := guard.Sanitize(message, s.cfg.MaxInputLength)
	if err := guard.ValidatePromptInjection(sanitized); err != nil {
		return "", err
	}

	estimated := guard.EstimateTokens(sanitized) + s.cfg.MaxTokensPerRequest
	if err := s.governor.Admit(lctx.UserID, estimated); err != nil {
		return "", err
	}
	return sanitized, nil
}

func (s *Service) buildRequest(sanitized string, lctx *tutortypes.LearningContext, history []tutortypes.ChatMessage, persona *tutortypes.AIPersona) gateway.Request {
	p := s.resolvePersona(persona)
	return gateway.Request{
		SystemPrompt: s.composer.BuildSystemPrompt(p, lctx),
		History:      history,
		UserPrompt:   s.composer.BuildUserPrompt(sanitized, lctx),
		Model:        s.cfg.Model,
		Temperature:  s.cfg.Temperature,
		MaxTokens:    s.cfg.MaxTokensPerRequest,
	}
}

func (s *Service) resolvePersona(persona *tutortypes.AIPersona) tutortypes.AIPersona {
	if persona != nil {
		return *persona
	}
	return prompt.PersonaByName(s.cfg.PersonaName)
}

// generateWithRetries calls the gateway with bounded attempts and a
// linearly growing backoff. The gateway itself never retries.
func (s *Service) generateWithRetries(ctx context.Context, req gateway.Request) (*gateway.Reply, error) {
	attempts := s.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * s.cfg.RetryBackoff
			logger.Debug("Retrying generation", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		reply, err := s.gw.Generate(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all %d generation attempts failed: %w", attempts, lastErr)
}

// finishExchange updates the conversation state from the completed
// exchange, derives the adaptive-teaching signals, and assembles the
// structured response. Within one session these updates apply in the
// order requests were admitted.
func (s *Service) finishExchange(sessionID string, lctx *tutortypes.LearningContext, sanitized string, reply *gateway.Reply) *tutortypes.AIResponse {
	actions := analyzer.AdaptiveActions(reply.Content, lctx)

	s.tracker.RecordUserMessage(sessionID, sanitized)
	s.tracker.RecordAssistantMessage(sessionID, reply.Content)
	s.tracker.RecordAdaptiveActions(sessionID, actions)

	contextCopy := *lctx
	return &tutortypes.AIResponse{
		ID:                uuid.New().String(),
		Content:           reply.Content,
		Confidence:        generatedConfidence,
		Suggestions:       analyzer.Suggestions(lctx),
		FollowUpQuestions: analyzer.FollowUpQuestions(reply.Content),
		Metadata: tutortypes.ResponseMetadata{
			Model:       reply.Model,
			TokensUsed:  reply.TokensUsed,
			Temperature: s.cfg.Temperature,
			Context:     &contextCopy,
		},
		AdaptiveActions:   actions,
		TutorialPrompts:   analyzer.TutorialPrompts(reply.Content),
		AssessmentTrigger: analyzer.AssessmentTrigger(reply.Content),
	}
}

// streamFallback re-emits a fallback response through the chunk handler so
// streaming callers observe the same contract on degraded paths.
func (s *Service) streamFallback(ctx context.Context, fallback *tutortypes.AIResponse, onChunk gateway.ChunkHandler) (*tutortypes.AIResponse, error) {
	if fallback == nil {
		return nil, fmt.Errorf("no fallback available")
	}
	words := strings.Fields(fallback.Content)
	var cumulative strings.Builder
	for i, word := range words {
		if i > 0 {
			cumulative.WriteString(" ")
			select {
			case <-ctx.Done():
				return fallback, ctx.Err()
			case <-time.After(s.cfg.ChunkDelay):
			}
		}
		cumulative.WriteString(word)
		chunk := tutortypes.StreamChunk{Content: cumulative.String(), Index: i, Done: i == len(words)-1}
		if err := onChunk(chunk); err != nil {
			return fallback, fmt.Errorf("stream handler failed: %w", err)
		}
	}
	return fallback, nil
}
