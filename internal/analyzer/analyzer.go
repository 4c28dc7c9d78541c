// Package analyzer derives adaptive-teaching signals from generated text.
// Every function here is a pure function of (text, learning context): no
// clock, no randomness beyond generated IDs, no external calls.
package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"edumentor/pkg/tutortypes"
)

// Lexical marker sets. These are heuristics over the generated text, not
// a model of the learner.
var (
	easinessMarkers   = []string{"too easy", "simple", "straightforward", "you already know this"}
	difficultyMarkers = []string{"difficult", "confusing", "hard to understand", "struggling", "challenging concept"}
	visualMarkers     = []string{"diagram", "picture", "visualize", "imagine", "chart", "graph", "drawing"}
	practiceMarkers   = []string{"practice", "exercise", "try it yourself", "hands-on"}
	reviewMarkers     = []string{"understanding", "concept review", "let's review", "recap"}

	assessmentSignals = []string{
		"ready for assessment",
		"ready for a quiz",
		"quiz",
		"check understanding",
		"test your knowledge",
		"see how much you've learned",
	}

	// questionPattern captures interrogative sentences opened by a
	// question word and closed by a question mark.
	questionPattern = regexp.MustCompile(`(?i)\b((?:What|How|Why|When|Where)\b[^.?!]*\?)`)
)

// maxFollowUpsPerOpener and maxFollowUps bound the follow-up question scan.
const (
	maxFollowUpsPerOpener = 2
	maxFollowUps          = 5
)

// progressSuggestionThreshold is the score below which a practice
// suggestion is always emitted.
const progressSuggestionThreshold = 70.0

// AdaptiveActions derives difficulty and style adjustments from the
// generated text and the learner's context.
func AdaptiveActions(text string, lctx *tutortypes.LearningContext) []tutortypes.AdaptiveAction {
	lower := strings.ToLower(text)
	now := time.Now()
	var actions []tutortypes.AdaptiveAction

	if containsAny(lower, easinessMarkers) {
		actions = append(actions, tutortypes.AdaptiveAction{
			ID:        uuid.New().String(),
			Type:      tutortypes.ActionDifficultyAdjustment,
			Action:    "increase_difficulty",
			Reason:    "response indicates current material is too easy",
			Timestamp: now,
		})
	}

	if containsAny(lower, difficultyMarkers) {
		actions = append(actions, tutortypes.AdaptiveAction{
			ID:        uuid.New().String(),
			Type:      tutortypes.ActionDifficultyAdjustment,
			Action:    "decrease_difficulty",
			Reason:    "response indicates the learner is struggling",
			Timestamp: now,
		})
	}

	if lctx != nil && lctx.LearningStyle == tutortypes.StyleVisual && !containsAny(lower, visualMarkers) {
		actions = append(actions, tutortypes.AdaptiveAction{
			ID:        uuid.New().String(),
			Type:      tutortypes.ActionExplanationStyle,
			Action:    "switch_to_visual_explanation",
			Reason:    "visual learner received a response without visual references",
			Timestamp: now,
		})
	}

	return actions
}

// TutorialPrompts suggests next tutorial activities mentioned by the
// generated text.
func TutorialPrompts(text string) []tutortypes.TutorialPrompt {
	lower := strings.ToLower(text)
	var prompts []tutortypes.TutorialPrompt

	if containsAny(lower, practiceMarkers) {
		prompts = append(prompts, tutortypes.TutorialPrompt{
			Type:        "practice",
			Title:       "Practice Exercise",
			Description: "Work through a practice exercise on this topic",
			Action:      "start_practice",
		})
	}

	if containsAny(lower, reviewMarkers) {
		prompts = append(prompts, tutortypes.TutorialPrompt{
			Type:        "assessment",
			Title:       "Quick Check",
			Description: "Take a short assessment to confirm understanding",
			Action:      "start_assessment",
		})
	}

	return prompts
}

// FollowUpQuestions scans the text for interrogative sentences, keeping at
// most two per question opener and five in total.
func FollowUpQuestions(text string) []string {
	matches := questionPattern.FindAllString(text, -1)

	perOpener := make(map[string]int)
	var questions []string
	for _, match := range matches {
		if len(questions) >= maxFollowUps {
			break
		}
		question := strings.TrimSpace(match)
		opener := strings.ToLower(strings.Fields(question)[0])
		if perOpener[opener] >= maxFollowUpsPerOpener {
			continue
		}
		perOpener[opener]++
		questions = append(questions, question)
	}
	return questions
}

// Suggestions derives contextual next steps from the learner's module,
// weaknesses, and progress score.
func Suggestions(lctx *tutortypes.LearningContext) []string {
	if lctx == nil {
		return nil
	}

	var suggestions []string
	if lctx.CurrentModule != "" {
		suggestions = append(suggestions, fmt.Sprintf("Continue with the next lesson in %s", lctx.CurrentModule))
	}
	if len(lctx.Weaknesses) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Review %s to shore up a weak area", lctx.Weaknesses[0]))
	}
	if lctx.Progress.CurrentScore < progressSuggestionThreshold {
		suggestions = append(suggestions, "Spend more time on practice problems before moving on")
	}
	return suggestions
}

// AssessmentTrigger reports whether the text contains any phrase from the
// fixed readiness-signal set.
func AssessmentTrigger(text string) bool {
	return containsAny(strings.ToLower(text), assessmentSignals)
}

func containsAny(lower string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
