package tutor

import (
	"fmt"

	"github.com/google/uuid"

	"edumentor/internal/analyzer"
	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// fallbackFor substitutes a canned, context-aware response for recoverable
// error classes so the dialogue degrades gracefully instead of breaking.
// Fatal classes (input rejection, prompt injection) return nil: those must
// surface to the caller as errors. Unknown errors are logged in full and
// degrade to a generic fallback.
func (s *Service) fallbackFor(err error, lctx *tutortypes.LearningContext) *tutortypes.AIResponse {
	class := tutortypes.ClassOf(err)

	var content string
	switch class {
	case tutortypes.ErrClassInputRejected, tutortypes.ErrClassPromptInjection:
		return nil
	case tutortypes.ErrClassRateLimit:
		content = fmt.Sprintf(
			"You're working fast! Give me a short moment to catch up, then we'll keep going with %s. %s",
			moduleName(lctx), styleHint(lctx))
	case tutortypes.ErrClassBudget:
		content = fmt.Sprintf(
			"We've used up today's tutoring time. Your progress in %s is saved, so take a well-earned break and come back tomorrow. %s",
			moduleName(lctx), styleHint(lctx))
	case tutortypes.ErrClassGeneration:
		content = fmt.Sprintf(
			"I'm having trouble reaching my knowledge base right now. Let's take another look at %s in a moment. %s",
			moduleName(lctx), styleHint(lctx))
	default:
		logger.Error("Unexpected pipeline error, degrading to generic fallback", "error", err)
		content = fmt.Sprintf(
			"Something went wrong on my side, but your work on %s is safe. Please try that question again.",
			moduleName(lctx))
	}

	logger.Warn("Substituting fallback response", "class", string(class))

	return &tutortypes.AIResponse{
		ID:          uuid.New().String(),
		Content:     content,
		Confidence:  fallbackConfidence,
		Suggestions: analyzer.Suggestions(lctx),
		Metadata: tutortypes.ResponseMetadata{
			Model:       "fallback",
			Temperature: s.cfg.Temperature,
		},
	}
}

func moduleName(lctx *tutortypes.LearningContext) string {
	if lctx == nil || lctx.CurrentModule == "" {
		return "your current topic"
	}
	return lctx.CurrentModule
}

// styleHint tailors the fallback to the learner's style so even degraded
// replies stay pedagogically useful.
func styleHint(lctx *tutortypes.LearningContext) string {
	if lctx == nil {
		return ""
	}
	switch lctx.LearningStyle {
	case tutortypes.StyleVisual:
		return "Meanwhile, try sketching what you know so far as a diagram."
	case tutortypes.StyleAuditory:
		return "Meanwhile, try explaining the idea out loud in your own words."
	case tutortypes.StyleKinesthetic:
		return "Meanwhile, try working through a small example by hand."
	case tutortypes.StyleReading:
		return "Meanwhile, re-reading your notes on this topic may help."
	default:
		return ""
	}
}
