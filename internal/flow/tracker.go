// Package flow maintains the per-session conversation state: a bounded,
// continuously-scored model of learner understanding, engagement, and
// frustration, updated synchronously after every exchange. There is no
// terminal state; a session's state lives until the session is discarded.
package flow

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// Tracker owns the conversation state for every live session. Each
// session's state is guarded by its own mutex so overlapping requests for
// the same session never race, while distinct sessions update concurrently.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]*sessionState
	log    *log.Logger
}

type sessionState struct {
	mu    sync.Mutex
	state tutortypes.ConversationState
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[string]*sessionState),
		log:    logger.NewStyledLogger("Flow"),
	}
}

func (t *Tracker) sessionFor(sessionID string) *sessionState {
	t.mu.RLock()
	s, ok := t.states[sessionID]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.states[sessionID]; ok {
		return s
	}
	s = &sessionState{
		state: tutortypes.ConversationState{
			SessionID:          sessionID,
			UnderstandingLevel: 50,
			EngagementLevel:    50,
			FrustrationLevel:   0,
		},
	}
	t.states[sessionID] = s
	t.log.Debug("Conversation state created", "session_id", sessionID)
	return s
}

// RecordUserMessage applies the cue rule table and the message-length
// engagement adjustment for one user message, then appends the classified
// flow step. Updates for one session are serialized.
func (t *Tracker) RecordUserMessage(sessionID, content string) tutortypes.ConversationState {
	s := t.sessionFor(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(content)
	for _, rule := range userMessageRules {
		for _, cue := range rule.cues {
			if strings.Contains(lower, cue) {
				rule.effect(&s.state)
				t.log.Debug("State rule applied", "session_id", sessionID, "rule", rule.name)
				break
			}
		}
	}

	switch {
	case len(content) > longMessageChars:
		s.state.EngagementLevel = clamp(s.state.EngagementLevel + engagementGain)
	case len(content) < shortMessageChars:
		s.state.EngagementLevel = clamp(s.state.EngagementLevel - engagementLoss)
	}

	s.state.LastInteraction = time.Now()
	appendStep(&s.state, tutortypes.FlowStep{
		ID:        uuid.New().String(),
		Type:      ClassifyStep(content),
		Content:   content,
		Timestamp: s.state.LastInteraction,
	})

	return s.state
}

// RecordAssistantMessage classifies and appends the assistant's reply to
// the flow log without adjusting the learner's levels.
func (t *Tracker) RecordAssistantMessage(sessionID, content string) tutortypes.ConversationState {
	s := t.sessionFor(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LastInteraction = time.Now()
	appendStep(&s.state, tutortypes.FlowStep{
		ID:        uuid.New().String(),
		Type:      ClassifyStep(content),
		Content:   content,
		Timestamp: s.state.LastInteraction,
	})
	return s.state
}

// RecordAdaptiveActions attaches analyzer output to the session state.
func (t *Tracker) RecordAdaptiveActions(sessionID string, actions []tutortypes.AdaptiveAction) {
	if len(actions) == 0 {
		return
	}
	s := t.sessionFor(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AdaptiveActions = append(s.state.AdaptiveActions, actions...)
}

// State returns a copy of the session's current state.
func (t *Tracker) State(sessionID string) tutortypes.ConversationState {
	s := t.sessionFor(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Discard drops a session's state when the session ends.
func (t *Tracker) Discard(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, sessionID)
	t.log.Debug("Conversation state discarded", "session_id", sessionID)
}

// appendStep appends to the bounded flow log, evicting the oldest entry
// once MaxFlowSteps is reached.
func appendStep(state *tutortypes.ConversationState, step tutortypes.FlowStep) {
	state.ConversationFlow = append(state.ConversationFlow, step)
	if len(state.ConversationFlow) > tutortypes.MaxFlowSteps {
		state.ConversationFlow = state.ConversationFlow[len(state.ConversationFlow)-tutortypes.MaxFlowSteps:]
	}
}
