package tutortypes

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a tutoring conversation.
// Messages are immutable once created and appended to a session's ordered log.
type ChatMessage struct {
	ID         string           `json:"id"`
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	Timestamp  time.Time        `json:"timestamp"`
	TokenCount int              `json:"token_count,omitempty"`
	Context    *LearningContext `json:"context,omitempty"`
}
