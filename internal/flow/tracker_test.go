package flow

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edumentor/pkg/tutortypes"
)

func TestRecordUserMessage_ConfusionScenario(t *testing.T) {
	tracker := NewTracker()
	before := tracker.State("s-1")

	state := tracker.RecordUserMessage("s-1", "I don't understand this at all, it's so confusing")

	assert.Greater(t, state.FrustrationLevel, before.FrustrationLevel)
	assert.Less(t, state.UnderstandingLevel, before.UnderstandingLevel)
	assert.True(t, state.NeedsHelp)

	require.Len(t, state.ConversationFlow, 1)
	assert.Equal(t, tutortypes.StepQuestion, state.ConversationFlow[0].Type)
}

func TestRecordUserMessage_ComprehensionScenario(t *testing.T) {
	tracker := NewTracker()
	before := tracker.State("s-1")

	// Padded beyond 50 characters so the engagement bonus also applies.
	message := "I understand now, that makes sense! Thanks for the walkthrough."
	require.Greater(t, len(message), 50)

	state := tracker.RecordUserMessage("s-1", message)

	assert.Equal(t, before.UnderstandingLevel+10, state.UnderstandingLevel)
	assert.Equal(t, clamp(before.FrustrationLevel-5), state.FrustrationLevel)
	assert.Equal(t, before.EngagementLevel+5, state.EngagementLevel)
	assert.False(t, state.NeedsHelp)
}

func TestRecordUserMessage_ShortMessageLowersEngagement(t *testing.T) {
	tracker := NewTracker()
	before := tracker.State("s-1")

	state := tracker.RecordUserMessage("s-1", "ok")
	assert.Equal(t, before.EngagementLevel-2, state.EngagementLevel)
}

func TestRecordUserMessage_HelpRequestSetsNeedsHelp(t *testing.T) {
	tracker := NewTracker()
	state := tracker.RecordUserMessage("s-1", "can you help me with this proof")
	assert.True(t, state.NeedsHelp)
}

func TestLevels_StayWithinBoundsUnderAnySequence(t *testing.T) {
	tracker := NewTracker()

	for i := 0; i < 30; i++ {
		tracker.RecordUserMessage("s-1", "I understand now, that makes sense and I am very engaged with it!")
	}
	state := tracker.State("s-1")
	assert.LessOrEqual(t, state.UnderstandingLevel, 100.0)
	assert.LessOrEqual(t, state.EngagementLevel, 100.0)
	assert.GreaterOrEqual(t, state.FrustrationLevel, 0.0)

	for i := 0; i < 40; i++ {
		tracker.RecordUserMessage("s-1", "no")
	}
	state = tracker.State("s-1")
	assert.GreaterOrEqual(t, state.EngagementLevel, 0.0)

	for i := 0; i < 30; i++ {
		tracker.RecordUserMessage("s-1", "this is confusing, I don't understand")
	}
	state = tracker.State("s-1")
	assert.GreaterOrEqual(t, state.UnderstandingLevel, 0.0)
	assert.LessOrEqual(t, state.FrustrationLevel, 100.0)
}

func TestConversationFlow_BoundedAtTwentyWithFIFOEviction(t *testing.T) {
	tracker := NewTracker()

	for i := 0; i < 25; i++ {
		tracker.RecordUserMessage("s-1", fmt.Sprintf("message number %d", i))
	}

	state := tracker.State("s-1")
	require.Len(t, state.ConversationFlow, tutortypes.MaxFlowSteps)
	assert.Contains(t, state.ConversationFlow[0].Content, "message number 5", "oldest entries must be evicted first")
	assert.Contains(t, state.ConversationFlow[19].Content, "message number 24")
}

func TestClassifyStep(t *testing.T) {
	tests := []struct {
		content  string
		expected tutortypes.FlowStepType
	}{
		{"What is a pointer?", tutortypes.StepQuestion},
		{"how does this work", tutortypes.StepQuestion},
		{"Time for a quiz on loops", tutortypes.StepAssessment},
		{"Great job, keep it up!", tutortypes.StepEncouragement},
		{"A pointer stores a memory address.", tutortypes.StepExplanation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyStep(tt.content), "content: %q", tt.content)
	}
}

func TestRecordAssistantMessage_AppendsWithoutLevelChanges(t *testing.T) {
	tracker := NewTracker()
	before := tracker.State("s-1")

	state := tracker.RecordAssistantMessage("s-1", "A slice is a view over an array.")
	assert.Equal(t, before.UnderstandingLevel, state.UnderstandingLevel)
	assert.Equal(t, before.EngagementLevel, state.EngagementLevel)
	require.Len(t, state.ConversationFlow, 1)
	assert.Equal(t, tutortypes.StepExplanation, state.ConversationFlow[0].Type)
}

func TestTracker_SessionsAreIndependent(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordUserMessage("s-1", "this is confusing, I don't understand")

	other := tracker.State("s-2")
	assert.False(t, other.NeedsHelp)
	assert.Empty(t, other.ConversationFlow)
}

func TestTracker_ConcurrentUpdatesSameSession(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.RecordUserMessage("s-1", strings.Repeat("I am thinking hard about this problem ", 2))
		}()
	}
	wg.Wait()

	state := tracker.State("s-1")
	assert.LessOrEqual(t, state.EngagementLevel, 100.0)
	assert.Len(t, state.ConversationFlow, tutortypes.MaxFlowSteps)
}

func TestDiscard_RemovesState(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordUserMessage("s-1", "hello there friend")
	tracker.Discard("s-1")

	fresh := tracker.State("s-1")
	assert.Empty(t, fresh.ConversationFlow)
}
