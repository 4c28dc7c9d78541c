// Package tutortypes defines the shared domain types for EduMentor.
// This file contains the learner-context types supplied by callers on
// every request. The core treats them as read-only snapshots.
package tutortypes

// LearningStyle describes how a learner prefers material to be presented.
type LearningStyle string

// Supported learning styles.
const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

// ProgressSummary captures a learner's coarse progress figures.
type ProgressSummary struct {
	CompletedModules int     `json:"completed_modules"`
	CurrentScore     float64 `json:"current_score"`
}

// LearningContext is the caller-supplied snapshot of a learner's current
// module, path, style, difficulty, and progress. It is owned by the caller;
// the core never mutates it.
type LearningContext struct {
	UserID          string          `json:"user_id"`
	CurrentModule   string          `json:"current_module"`
	CurrentPath     string          `json:"current_path"`
	LearningStyle   LearningStyle   `json:"learning_style"`
	DifficultyLevel string          `json:"difficulty_level"`
	Strengths       []string        `json:"strengths"`
	Weaknesses      []string        `json:"weaknesses"`
	RecentMistakes  []string        `json:"recent_mistakes"`
	Progress        ProgressSummary `json:"progress"`
}
