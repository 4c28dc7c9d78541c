// Package guard sanitizes and screens raw learner input before it reaches
// admission control or prompt composition.
package guard

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"edumentor/internal/logger"
	"edumentor/pkg/tutortypes"
)

// RedactionMarker replaces any dangerous-pattern match in sanitized text.
const RedactionMarker = "[filtered]"

// DefaultMaxInputLength is the truncation limit applied when the caller
// does not override it.
const DefaultMaxInputLength = 10000

// dangerousPatterns is the fixed catalogue of input patterns that are
// always redacted: prompt-override phrasing, role/identity overrides,
// code-execution markers, markup/script injection, template interpolation,
// and SQL keywords.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions?`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(prior|previous|above)\s+(instructions?|prompts?)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all)\s+(above|before)`),
	regexp.MustCompile(`(?i)\bsystem\s*:\s*`),
	regexp.MustCompile(`(?i)\bassistant\s*:\s*`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an)\s+`),
	regexp.MustCompile(`(?i)\beval\s*\(`),
	regexp.MustCompile(`(?i)\bexec\s*\(`),
	regexp.MustCompile(`(?i)<\s*script[^>]*>`),
	regexp.MustCompile(`(?i)<\s*/\s*script\s*>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)on(load|click|error|mouseover)\s*=`),
	regexp.MustCompile(`\{\{[^}]*\}\}`),
	regexp.MustCompile(`\$\{[^}]*\}`),
	regexp.MustCompile(`(?i)\b(drop|delete|insert|update|union|select)\s+(table|from|into|all)\b`),
}

// injectionPatterns is the heuristic set used by ValidatePromptInjection.
// Matching any of them rejects the request outright. This screening is
// best-effort: it raises the bar against casual prompt injection but is
// not a security guarantee.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)`),
	regexp.MustCompile(`(?i)new\s+(rules?|instructions?)\s*:`),
	regexp.MustCompile(`(?i)pretend\s+(you('re|\s+are)|to\s+be)`),
	regexp.MustCompile(`(?i)act\s+as\s+(if|a|an|though)`),
	regexp.MustCompile(`(?i)roleplay\s+as`),
	regexp.MustCompile(`(?i)you\s+are\s+no\s+longer`),
	regexp.MustCompile(`(?i)override\s+(your|the)\s+(instructions?|rules?|persona)`),
}

// Sanitize trims the text, redacts every dangerous-pattern match, and
// truncates the result to maxLen with a trailing ellipsis. A maxLen of
// zero or below falls back to DefaultMaxInputLength.
func Sanitize(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxInputLength
	}

	sanitized := strings.TrimSpace(text)
	for _, pattern := range dangerousPatterns {
		sanitized = pattern.ReplaceAllString(sanitized, RedactionMarker)
	}

	if len(sanitized) > maxLen {
		// Walk back to a rune boundary so truncation never splits a
		// multibyte character.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		logger.Debug("Input truncated", "original_length", len(sanitized), "max_length", maxLen)
		sanitized = sanitized[:cut] + "..."
	}

	return sanitized
}

// ValidatePromptInjection rejects text matching the injection heuristics.
// It must run after Sanitize and before any admission check; a rejection
// is terminal and non-retryable.
func ValidatePromptInjection(text string) error {
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(text) {
			logger.Warn("Prompt injection suspected", "pattern", pattern.String())
			return tutortypes.NewPromptInjectionError("message rejected by injection screening")
		}
	}
	return nil
}

// EstimateTokens returns a cheap deterministic token-count proxy
// (character count divided by four, rounded up) used wherever an exact
// tokenizer is unavailable.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
