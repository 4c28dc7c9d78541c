// Package analytics derives on-demand session summaries from the raw
// message log and conversation state. Every figure is a heuristic
// approximation layered over raw logs; the aggregator never participates
// in the live request path.
package analytics

import (
	"sort"
	"strings"

	"edumentor/pkg/tutortypes"
)

// Bounds and thresholds for the heuristic summaries.
const (
	topicMinWordLength     = 4
	topTopicsLimit         = 10
	effectivenessThreshold = 70.0
)

var positiveKeywords = []string{"great", "good", "thanks", "helpful", "understand", "makes sense", "got it", "awesome", "clear"}
var negativeKeywords = []string{"confused", "confusing", "frustrated", "stuck", "difficult", "hard", "lost", "wrong", "hate"}

var helpCues = []string{"help", "stuck", "can you explain", "show me"}

// TopicCount is one entry of the naive topic-frequency summary.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// SentimentSummary is the keyword-based sentiment tally.
type SentimentSummary struct {
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Overall  string `json:"overall"`
}

// EngagementMetrics summarizes how actively the learner participated.
type EngagementMetrics struct {
	AverageMessageLength   float64 `json:"average_message_length"`
	QuestionCount          int     `json:"question_count"`
	HelpRequestCount       int     `json:"help_request_count"`
	SessionDurationMinutes float64 `json:"session_duration_minutes"`
}

// ProgressSummary is the rough learning-progress estimate for one session.
type ProgressSummary struct {
	ConceptsSeen      []string `json:"concepts_seen"`
	ResolvedQuestions int      `json:"resolved_questions"`
	ProgressRate      float64  `json:"progress_rate"`
}

// SessionAnalytics bundles every on-demand summary.
type SessionAnalytics struct {
	AverageResponseSeconds float64           `json:"average_response_seconds"`
	TopTopics              []TopicCount      `json:"top_topics"`
	Sentiment              SentimentSummary  `json:"sentiment"`
	Engagement             EngagementMetrics `json:"engagement"`
	Progress               ProgressSummary   `json:"progress"`
	AdaptiveEffectiveness  float64           `json:"adaptive_effectiveness"`
}

// Aggregate computes the full analytics bundle for one session.
func Aggregate(messages []tutortypes.ChatMessage, state *tutortypes.ConversationState) SessionAnalytics {
	return SessionAnalytics{
		AverageResponseSeconds: averageResponseSeconds(messages),
		TopTopics:              topTopics(messages),
		Sentiment:              sentiment(messages),
		Engagement:             engagement(messages),
		Progress:               progress(messages),
		AdaptiveEffectiveness:  adaptiveEffectiveness(state),
	}
}

// averageResponseSeconds averages the timestamp deltas over consecutive
// user→assistant pairs.
func averageResponseSeconds(messages []tutortypes.ChatMessage) float64 {
	var total float64
	var pairs int
	for i := 1; i < len(messages); i++ {
		if messages[i-1].Role == tutortypes.RoleUser && messages[i].Role == tutortypes.RoleAssistant {
			total += messages[i].Timestamp.Sub(messages[i-1].Timestamp).Seconds()
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

// topTopics counts words longer than four characters over user messages
// and returns the ten most frequent.
func topTopics(messages []tutortypes.ChatMessage) []TopicCount {
	counts := make(map[string]int)
	for _, msg := range messages {
		if msg.Role != tutortypes.RoleUser {
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(msg.Content)) {
			word = strings.Trim(word, ".,!?;:\"'()")
			if len(word) > topicMinWordLength {
				counts[word]++
			}
		}
	}

	topics := make([]TopicCount, 0, len(counts))
	for topic, count := range counts {
		topics = append(topics, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > topTopicsLimit {
		topics = topics[:topTopicsLimit]
	}
	return topics
}

// sentiment tallies positive and negative keyword hits over user messages.
// This is a keyword count, not a model.
func sentiment(messages []tutortypes.ChatMessage) SentimentSummary {
	var summary SentimentSummary
	for _, msg := range messages {
		if msg.Role != tutortypes.RoleUser {
			continue
		}
		lower := strings.ToLower(msg.Content)
		for _, kw := range positiveKeywords {
			if strings.Contains(lower, kw) {
				summary.Positive++
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(lower, kw) {
				summary.Negative++
			}
		}
	}

	switch {
	case summary.Positive > summary.Negative:
		summary.Overall = "positive"
	case summary.Negative > summary.Positive:
		summary.Overall = "negative"
	default:
		summary.Overall = "neutral"
	}
	return summary
}

func engagement(messages []tutortypes.ChatMessage) EngagementMetrics {
	var metrics EngagementMetrics
	var userMessages int
	var totalLength int

	for _, msg := range messages {
		if msg.Role != tutortypes.RoleUser {
			continue
		}
		userMessages++
		totalLength += len(msg.Content)
		if strings.Contains(msg.Content, "?") {
			metrics.QuestionCount++
		}
		lower := strings.ToLower(msg.Content)
		for _, cue := range helpCues {
			if strings.Contains(lower, cue) {
				metrics.HelpRequestCount++
				break
			}
		}
	}

	if userMessages > 0 {
		metrics.AverageMessageLength = float64(totalLength) / float64(userMessages)
	}
	if len(messages) >= 2 {
		metrics.SessionDurationMinutes = messages[len(messages)-1].Timestamp.Sub(messages[0].Timestamp).Minutes()
	}
	return metrics
}

// progress estimates learning progress: concepts seen via context
// snapshots, questions considered resolved when an assistant reply
// follows, and a rough rate of resolved questions per concept.
func progress(messages []tutortypes.ChatMessage) ProgressSummary {
	seen := make(map[string]bool)
	var concepts []string
	var resolved int

	for i, msg := range messages {
		if msg.Context != nil && msg.Context.CurrentModule != "" && !seen[msg.Context.CurrentModule] {
			seen[msg.Context.CurrentModule] = true
			concepts = append(concepts, msg.Context.CurrentModule)
		}
		if msg.Role == tutortypes.RoleUser && strings.Contains(msg.Content, "?") &&
			i+1 < len(messages) && messages[i+1].Role == tutortypes.RoleAssistant {
			resolved++
		}
	}

	summary := ProgressSummary{ConceptsSeen: concepts, ResolvedQuestions: resolved}
	if len(concepts) > 0 {
		summary.ProgressRate = float64(resolved) / float64(len(concepts))
	}
	return summary
}

// adaptiveEffectiveness is the fraction of recorded adaptive actions whose
// effectiveness score exceeds the threshold. Actions without a score are
// excluded from the denominator.
func adaptiveEffectiveness(state *tutortypes.ConversationState) float64 {
	if state == nil {
		return 0
	}
	var scored, effective int
	for _, action := range state.AdaptiveActions {
		if action.Effectiveness == nil {
			continue
		}
		scored++
		if *action.Effectiveness > effectivenessThreshold {
			effective++
		}
	}
	if scored == 0 {
		return 0
	}
	return float64(effective) / float64(scored)
}
