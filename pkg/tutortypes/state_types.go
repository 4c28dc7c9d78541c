package tutortypes

import "time"

// MaxFlowSteps bounds the per-session conversation flow log. Oldest
// entries are evicted once the cap is reached.
const MaxFlowSteps = 20

// FlowStepType classifies one turn in the conversation flow.
type FlowStepType string

// Flow step classifications.
const (
	StepQuestion      FlowStepType = "question"
	StepExplanation   FlowStepType = "explanation"
	StepEncouragement FlowStepType = "encouragement"
	StepAssessment    FlowStepType = "assessment"
)

// FlowStep is one classified turn in the per-session interaction log.
type FlowStep struct {
	ID           string       `json:"id"`
	Type         FlowStepType `json:"type"`
	Content      string       `json:"content"`
	Timestamp    time.Time    `json:"timestamp"`
	UserResponse string       `json:"user_response,omitempty"`
}

// AdaptiveActionType enumerates the pedagogical adjustment categories.
type AdaptiveActionType string

// Adaptive action categories.
const (
	ActionDifficultyAdjustment AdaptiveActionType = "difficulty_adjustment"
	ActionExplanationStyle     AdaptiveActionType = "explanation_style"
	ActionEncouragement        AdaptiveActionType = "encouragement"
)

// AdaptiveAction is a structured signal recommending a pedagogical
// adjustment (difficulty, style, encouragement).
type AdaptiveAction struct {
	ID        string             `json:"id"`
	Type      AdaptiveActionType `json:"type"`
	Action    string             `json:"action"`
	Reason    string             `json:"reason"`
	Timestamp time.Time          `json:"timestamp"`
	Applied   bool               `json:"applied"`
	// Effectiveness is recorded after the fact on a 0-100 scale; nil
	// until a later exchange confirms whether the action helped.
	Effectiveness *float64 `json:"effectiveness,omitempty"`
}

// ConversationState is the bounded, continuously-scored model of learner
// understanding, engagement, and frustration for one session. All level
// fields stay within [0,100]. The state lives for the session's duration
// and is discarded with it.
type ConversationState struct {
	SessionID          string           `json:"session_id"`
	UnderstandingLevel float64          `json:"understanding_level"`
	EngagementLevel    float64          `json:"engagement_level"`
	FrustrationLevel   float64          `json:"frustration_level"`
	NeedsHelp          bool             `json:"needs_help"`
	LastInteraction    time.Time        `json:"last_interaction"`
	ConversationFlow   []FlowStep       `json:"conversation_flow"`
	AdaptiveActions    []AdaptiveAction `json:"adaptive_actions"`
}
