package tutortypes

// TutorialPrompt suggests a concrete next tutorial activity derived from
// the generated response.
type TutorialPrompt struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// ResponseMetadata records how a response was produced.
type ResponseMetadata struct {
	Model       string           `json:"model"`
	TokensUsed  int              `json:"tokens_used"`
	Temperature float64          `json:"temperature"`
	Context     *LearningContext `json:"context,omitempty"`
}

// AIResponse is the structured result of one tutoring exchange: the
// generated content plus the adaptive teaching signals derived from it.
type AIResponse struct {
	ID                string           `json:"id"`
	Content           string           `json:"content"`
	Confidence        float64          `json:"confidence"`
	Suggestions       []string         `json:"suggestions"`
	FollowUpQuestions []string         `json:"follow_up_questions"`
	Metadata          ResponseMetadata `json:"metadata"`
	AdaptiveActions   []AdaptiveAction `json:"adaptive_actions"`
	TutorialPrompts   []TutorialPrompt `json:"tutorial_prompts"`
	AssessmentTrigger bool             `json:"assessment_trigger"`
}

// StreamChunk is one increment of a streaming response. Content carries
// the cumulative text so far; Index increases monotonically; Done is true
// only on the final chunk.
type StreamChunk struct {
	Content string `json:"content"`
	Index   int    `json:"index"`
	Done    bool   `json:"done"`
}
