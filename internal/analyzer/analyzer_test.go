package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edumentor/pkg/tutortypes"
)

func visualContext() *tutortypes.LearningContext {
	return &tutortypes.LearningContext{
		UserID:        "u-1",
		CurrentModule: "Sorting Algorithms",
		LearningStyle: tutortypes.StyleVisual,
		Weaknesses:    []string{"recursion"},
		Progress:      tutortypes.ProgressSummary{CurrentScore: 85},
	}
}

func TestAdaptiveActions_TooEasyIncreasesDifficulty(t *testing.T) {
	actions := AdaptiveActions("This one is too easy for you, let's visualize a harder case.", visualContext())
	require.NotEmpty(t, actions)

	assert.Equal(t, tutortypes.ActionDifficultyAdjustment, actions[0].Type)
	assert.Equal(t, "increase_difficulty", actions[0].Action)
	assert.NotEmpty(t, actions[0].ID)
}

func TestAdaptiveActions_StruggleDecreasesDifficulty(t *testing.T) {
	actions := AdaptiveActions("This is a difficult topic, imagine a diagram of the tree.", visualContext())
	require.Len(t, actions, 1)
	assert.Equal(t, "decrease_difficulty", actions[0].Action)
}

func TestAdaptiveActions_VisualLearnerWithoutVisualVocabulary(t *testing.T) {
	actions := AdaptiveActions("A binary search halves the range each step.", visualContext())
	require.Len(t, actions, 1)
	assert.Equal(t, tutortypes.ActionExplanationStyle, actions[0].Type)
	assert.Equal(t, "switch_to_visual_explanation", actions[0].Action)
}

func TestAdaptiveActions_NonVisualLearnerNoStyleAction(t *testing.T) {
	lctx := visualContext()
	lctx.LearningStyle = tutortypes.StyleReading
	actions := AdaptiveActions("A binary search halves the range each step.", lctx)
	assert.Empty(t, actions)
}

func TestTutorialPrompts_PracticeExercise(t *testing.T) {
	prompts := TutorialPrompts("Would you like to try a practice exercise?")
	require.Len(t, prompts, 1)
	assert.Equal(t, "start_practice", prompts[0].Action)
	assert.Equal(t, "practice", prompts[0].Type)
}

func TestTutorialPrompts_ConceptReview(t *testing.T) {
	prompts := TutorialPrompts("Great job! Let's review your understanding of pointers.")
	require.NotEmpty(t, prompts)

	var found bool
	for _, p := range prompts {
		if p.Action == "start_assessment" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTutorialPrompts_NoMarkersNoPrompts(t *testing.T) {
	assert.Empty(t, TutorialPrompts("Here is the answer to your question."))
}

func TestFollowUpQuestions_ExtractsInterrogatives(t *testing.T) {
	text := "Recursion calls itself. What happens at the base case? How would you trace it by hand?"
	questions := FollowUpQuestions(text)
	require.Len(t, questions, 2)
	assert.Equal(t, "What happens at the base case?", questions[0])
	assert.Equal(t, "How would you trace it by hand?", questions[1])
}

func TestFollowUpQuestions_CapsPerOpenerAndTotal(t *testing.T) {
	text := "What is A? What is B? What is C? " +
		"How about D? How about E? How about F? " +
		"Why G? Why H? Why I? " +
		"When J? When K?"
	questions := FollowUpQuestions(text)

	assert.LessOrEqual(t, len(questions), 5)
	perOpener := map[string]int{}
	for _, q := range questions {
		switch q[0] {
		case 'W', 'H':
			perOpener[q[:3]]++
		}
	}
	for opener, count := range perOpener {
		assert.LessOrEqual(t, count, 2, "opener %q", opener)
	}
}

func TestSuggestions_ModuleWeaknessAndScore(t *testing.T) {
	lctx := visualContext()
	lctx.Progress.CurrentScore = 55

	suggestions := Suggestions(lctx)
	require.Len(t, suggestions, 3)
	assert.Contains(t, suggestions[0], "Sorting Algorithms")
	assert.Contains(t, suggestions[1], "recursion")
	assert.Contains(t, suggestions[2], "practice")
}

func TestSuggestions_HighScoreSkipsPractice(t *testing.T) {
	suggestions := Suggestions(visualContext())
	for _, s := range suggestions {
		assert.NotContains(t, s, "more time on practice")
	}
}

func TestAssessmentTrigger(t *testing.T) {
	assert.True(t, AssessmentTrigger("You seem ready for assessment now."))
	assert.True(t, AssessmentTrigger("Shall we do a quick quiz?"))
	assert.True(t, AssessmentTrigger("Let me check understanding before moving on."))
	assert.False(t, AssessmentTrigger("Let's keep exploring this topic."))
}
