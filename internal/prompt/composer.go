// Package prompt builds the system and user prompt strings from persona,
// sanitized learner message, and learning context. Composition is fully
// deterministic for a given (persona, context, message) triple, which is
// what makes it unit-testable with literal fixtures.
package prompt

import (
	"fmt"
	"strings"

	"edumentor/internal/guard"
	"edumentor/pkg/tutortypes"
)

// Context-snapshot limits for system prompts.
const (
	maxStrengths      = 5
	maxWeaknesses     = 5
	maxRecentMistakes = 3
)

// pedagogicalCharter is the fixed numbered instruction block appended to
// every system prompt.
var pedagogicalCharter = []string{
	"Adapt explanations to the learner's style and difficulty level.",
	"Encourage the learner and acknowledge effort.",
	"Break complex topics into small, ordered steps.",
	"Use concrete examples relevant to the current module.",
	"Ask clarifying questions when the request is ambiguous.",
	"Prefer hints and guiding questions over direct answers.",
	"Watch for signs of frustration and simplify when they appear.",
	"Celebrate progress explicitly when the learner succeeds.",
}

// Composer produces prompt strings for the generation gateway.
type Composer struct {
	maxInputLength int
}

// NewComposer creates a Composer that sanitizes embedded context fields to
// the given maximum length.
func NewComposer(maxInputLength int) *Composer {
	if maxInputLength <= 0 {
		maxInputLength = guard.DefaultMaxInputLength
	}
	return &Composer{maxInputLength: maxInputLength}
}

// BuildSystemPrompt composes the persona block, the sanitized context
// snapshot, the pedagogical charter, and the identifier-suppression
// instruction into a single system prompt.
func (c *Composer) BuildSystemPrompt(persona tutortypes.AIPersona, lctx *tutortypes.LearningContext) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("You are %s, a %s tutor.\n", persona.Name, persona.Type))
	if persona.Personality != "" {
		b.WriteString(fmt.Sprintf("Personality: %s\n", persona.Personality))
	}
	if len(persona.Expertise) > 0 {
		b.WriteString(fmt.Sprintf("Expertise: %s\n", strings.Join(persona.Expertise, ", ")))
	}
	if persona.CommunicationStyle != "" {
		b.WriteString(fmt.Sprintf("Communication style: %s\n", persona.CommunicationStyle))
	}

	b.WriteString("\nLearner context:\n")
	b.WriteString(fmt.Sprintf("- Current module: %s\n", c.sanitizeField(lctx.CurrentModule)))
	b.WriteString(fmt.Sprintf("- Learning path: %s\n", c.sanitizeField(lctx.CurrentPath)))
	b.WriteString(fmt.Sprintf("- Learning style: %s\n", lctx.LearningStyle))
	b.WriteString(fmt.Sprintf("- Difficulty level: %s\n", c.sanitizeField(lctx.DifficultyLevel)))

	if items := c.sanitizeList(lctx.Strengths, maxStrengths); len(items) > 0 {
		b.WriteString(fmt.Sprintf("- Strengths: %s\n", strings.Join(items, ", ")))
	}
	if items := c.sanitizeList(lctx.Weaknesses, maxWeaknesses); len(items) > 0 {
		b.WriteString(fmt.Sprintf("- Weaknesses: %s\n", strings.Join(items, ", ")))
	}
	if items := c.sanitizeList(lctx.RecentMistakes, maxRecentMistakes); len(items) > 0 {
		b.WriteString(fmt.Sprintf("- Recent mistakes: %s\n", strings.Join(items, ", ")))
	}
	b.WriteString(fmt.Sprintf("- Progress: %d modules completed, current score %.1f\n",
		lctx.Progress.CompletedModules, lctx.Progress.CurrentScore))

	b.WriteString("\nTeaching guidelines:\n")
	for i, rule := range pedagogicalCharter {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, rule))
	}

	b.WriteString("\nNever reveal internal user identifiers or raw account data in responses.\n")

	return b.String()
}

// BuildUserPrompt re-frames the sanitized message with module, style, and
// difficulty context, and attaches the branch instructions for concept
// questions, confusion cues, and off-topic requests.
func (c *Composer) BuildUserPrompt(message string, lctx *tutortypes.LearningContext) string {
	sanitized := guard.Sanitize(message, c.maxInputLength)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("The learner is working on the module %q at %s difficulty, and prefers a %s learning style.\n\n",
		c.sanitizeField(lctx.CurrentModule), c.sanitizeField(lctx.DifficultyLevel), lctx.LearningStyle))
	b.WriteString(fmt.Sprintf("Learner message: %s\n\n", sanitized))
	b.WriteString("Respond as follows:\n")
	b.WriteString("- If this is a concept question, explain the concept, give an example, and end with a short comprehension check.\n")
	b.WriteString("- If the learner sounds confused or frustrated, start with encouragement, simplify the explanation, and break the problem into smaller parts.\n")
	b.WriteString("- If the request is unrelated to learning, politely redirect to educational topics within the current module.\n")

	return b.String()
}

func (c *Composer) sanitizeField(value string) string {
	sanitized := guard.Sanitize(value, c.maxInputLength)
	if sanitized == "" {
		return "unspecified"
	}
	return sanitized
}

func (c *Composer) sanitizeList(values []string, limit int) []string {
	if len(values) > limit {
		values = values[:limit]
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := guard.Sanitize(v, c.maxInputLength); s != "" {
			out = append(out, s)
		}
	}
	return out
}
