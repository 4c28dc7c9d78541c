package flow

import (
	"strings"

	"edumentor/pkg/tutortypes"
)

// Level adjustment amounts applied by the cue rules.
const (
	understandingGain = 10
	frustrationRelief = 5
	engagementGain    = 5
	engagementLoss    = 2

	longMessageChars  = 50
	shortMessageChars = 10
)

// cueRule maps a set of lexical cues in a user message to a state effect.
// Expressing the cues as a table keeps every rule independently testable
// and extensible without touching the update control flow.
type cueRule struct {
	name   string
	cues   []string
	effect func(state *tutortypes.ConversationState)
}

// userMessageRules is the declarative rule table applied to every user
// message, in order. All level adjustments clamp to [0,100].
var userMessageRules = []cueRule{
	{
		name: "comprehension",
		cues: []string{"i understand", "makes sense", "got it", "i see", "that's clear", "now i get it"},
		effect: func(state *tutortypes.ConversationState) {
			state.UnderstandingLevel = clamp(state.UnderstandingLevel + understandingGain)
			state.FrustrationLevel = clamp(state.FrustrationLevel - frustrationRelief)
		},
	},
	{
		name: "confusion",
		cues: []string{"i don't understand", "confusing", "confused", "makes no sense", "lost me", "i'm lost", "don't get it"},
		effect: func(state *tutortypes.ConversationState) {
			state.UnderstandingLevel = clamp(state.UnderstandingLevel - understandingGain)
			state.FrustrationLevel = clamp(state.FrustrationLevel + frustrationRelief)
			state.NeedsHelp = true
		},
	},
	{
		name: "help request",
		cues: []string{"help", "stuck", "can you explain", "show me how"},
		effect: func(state *tutortypes.ConversationState) {
			state.NeedsHelp = true
		},
	},
}

// stepCues classifies a message into a FlowStep type by lexical cue.
// First match wins; explanation is the default classification.
var stepCues = []struct {
	stepType tutortypes.FlowStepType
	cues     []string
}{
	{tutortypes.StepQuestion, []string{"?", "what", "how", "why", "when", "where", "don't understand", "confused"}},
	{tutortypes.StepAssessment, []string{"quiz", "assessment", "test", "check understanding"}},
	{tutortypes.StepEncouragement, []string{"great job", "well done", "excellent", "keep it up", "you're doing"}},
}

// ClassifyStep assigns a FlowStep type to message content.
func ClassifyStep(content string) tutortypes.FlowStepType {
	lower := strings.ToLower(content)
	for _, candidate := range stepCues {
		for _, cue := range candidate.cues {
			if strings.Contains(lower, cue) {
				return candidate.stepType
			}
		}
	}
	return tutortypes.StepExplanation
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
