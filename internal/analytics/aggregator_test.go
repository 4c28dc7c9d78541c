package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edumentor/pkg/tutortypes"
)

func msg(role, content string, at time.Time, lctx *tutortypes.LearningContext) tutortypes.ChatMessage {
	return tutortypes.ChatMessage{
		ID:        "m-" + content[:min(4, len(content))],
		Role:      role,
		Content:   content,
		Timestamp: at,
		Context:   lctx,
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func TestAverageResponseSeconds(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	messages := []tutortypes.ChatMessage{
		msg(tutortypes.RoleUser, "What is recursion?", base, nil),
		msg(tutortypes.RoleAssistant, "Recursion is self-reference.", base.Add(2*time.Second), nil),
		msg(tutortypes.RoleUser, "What about iteration?", base.Add(10*time.Second), nil),
		msg(tutortypes.RoleAssistant, "Iteration repeats with loops.", base.Add(14*time.Second), nil),
	}

	result := Aggregate(messages, nil)
	assert.InDelta(t, 3.0, result.AverageResponseSeconds, 0.001)
}

func TestTopTopics_CountsLongUserWordsOnly(t *testing.T) {
	base := time.Now()
	messages := []tutortypes.ChatMessage{
		msg(tutortypes.RoleUser, "recursion recursion recursion stack base case", base, nil),
		msg(tutortypes.RoleAssistant, "pointers pointers pointers pointers", base, nil),
		msg(tutortypes.RoleUser, "stack overflow and the call stack", base, nil),
	}

	result := Aggregate(messages, nil)
	require.NotEmpty(t, result.TopTopics)

	assert.Equal(t, "recursion", result.TopTopics[0].Topic)
	assert.Equal(t, 3, result.TopTopics[0].Count)
	assert.Equal(t, "stack", result.TopTopics[1].Topic)
	assert.Equal(t, 3, result.TopTopics[1].Count)

	for _, topic := range result.TopTopics {
		assert.NotEqual(t, "pointers", topic.Topic, "assistant words must not count")
		assert.Greater(t, len(topic.Topic), 4)
	}
}

func TestTopTopics_CapsAtTen(t *testing.T) {
	base := time.Now()
	content := "alpha1 bravo2 charlie delta3 echo44 foxtrot golf55 hotel6 india7 juliet kilo88 lima99"
	messages := []tutortypes.ChatMessage{msg(tutortypes.RoleUser, content, base, nil)}

	result := Aggregate(messages, nil)
	assert.LessOrEqual(t, len(result.TopTopics), 10)
}

func TestSentiment(t *testing.T) {
	base := time.Now()
	messages := []tutortypes.ChatMessage{
		msg(tutortypes.RoleUser, "thanks, this was really helpful", base, nil),
		msg(tutortypes.RoleUser, "great explanation", base, nil),
		msg(tutortypes.RoleUser, "I am still confused though", base, nil),
	}

	result := Aggregate(messages, nil)
	assert.Equal(t, 3, result.Sentiment.Positive)
	assert.Equal(t, 1, result.Sentiment.Negative)
	assert.Equal(t, "positive", result.Sentiment.Overall)
}

func TestSentiment_NeutralWhenBalanced(t *testing.T) {
	result := Aggregate(nil, nil)
	assert.Equal(t, "neutral", result.Sentiment.Overall)
}

func TestEngagementMetrics(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	messages := []tutortypes.ChatMessage{
		msg(tutortypes.RoleUser, "What is a mutex?", base, nil),
		msg(tutortypes.RoleAssistant, "A mutual exclusion lock.", base.Add(time.Minute), nil),
		msg(tutortypes.RoleUser, "can you explain deadlocks", base.Add(2*time.Minute), nil),
		msg(tutortypes.RoleAssistant, "Two locks acquired in opposite order.", base.Add(3*time.Minute), nil),
	}

	result := Aggregate(messages, nil)
	assert.Equal(t, 1, result.Engagement.QuestionCount)
	assert.Equal(t, 1, result.Engagement.HelpRequestCount)
	assert.InDelta(t, 3.0, result.Engagement.SessionDurationMinutes, 0.001)
	assert.InDelta(t, float64(len("What is a mutex?")+len("can you explain deadlocks"))/2, result.Engagement.AverageMessageLength, 0.001)
}

func TestProgressSummary(t *testing.T) {
	base := time.Now()
	ctx1 := &tutortypes.LearningContext{CurrentModule: "Concurrency"}
	ctx2 := &tutortypes.LearningContext{CurrentModule: "Channels"}
	messages := []tutortypes.ChatMessage{
		msg(tutortypes.RoleUser, "What is a goroutine?", base, ctx1),
		msg(tutortypes.RoleAssistant, "A lightweight thread.", base, nil),
		msg(tutortypes.RoleUser, "What is a channel?", base, ctx2),
		msg(tutortypes.RoleAssistant, "A typed conduit.", base, nil),
		msg(tutortypes.RoleUser, "Unanswered question?", base, nil),
	}

	result := Aggregate(messages, nil)
	assert.Equal(t, []string{"Concurrency", "Channels"}, result.Progress.ConceptsSeen)
	assert.Equal(t, 2, result.Progress.ResolvedQuestions)
	assert.InDelta(t, 1.0, result.Progress.ProgressRate, 0.001)
}

func TestAdaptiveEffectiveness(t *testing.T) {
	high := 90.0
	low := 40.0
	state := &tutortypes.ConversationState{
		AdaptiveActions: []tutortypes.AdaptiveAction{
			{ID: "1", Effectiveness: &high},
			{ID: "2", Effectiveness: &low},
			{ID: "3", Effectiveness: &high},
			{ID: "4"}, // unscored, excluded from the denominator
		},
	}

	result := Aggregate(nil, state)
	assert.InDelta(t, 2.0/3.0, result.AdaptiveEffectiveness, 0.001)
}

func TestAdaptiveEffectiveness_NoScoredActions(t *testing.T) {
	result := Aggregate(nil, &tutortypes.ConversationState{})
	assert.Zero(t, result.AdaptiveEffectiveness)
}
