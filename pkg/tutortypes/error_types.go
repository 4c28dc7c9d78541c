package tutortypes

import (
	"errors"
	"fmt"
	"time"
)

// ErrorClass identifies where in the pipeline a request failed and whether
// the failure is retryable.
type ErrorClass string

// Pipeline error classes.
const (
	// ErrClassInputRejected marks an empty or invalid message or a missing
	// context. Fatal, no retry.
	ErrClassInputRejected ErrorClass = "input_rejected"
	// ErrClassPromptInjection marks a suspected prompt-injection attempt.
	// Fatal, the request is refused outright.
	ErrClassPromptInjection ErrorClass = "prompt_injection"
	// ErrClassRateLimit marks a per-user rate-limit rejection. Retryable
	// after the wait hint elapses.
	ErrClassRateLimit ErrorClass = "rate_limit"
	// ErrClassBudget marks a token-budget rejection. Terminal until an
	// explicit budget reset.
	ErrClassBudget ErrorClass = "budget_exceeded"
	// ErrClassGeneration marks a transport or service failure from the
	// generation backend. Retryable with bounded attempts.
	ErrClassGeneration ErrorClass = "generation_failed"
)

// PipelineError is the structured error carried through the request
// pipeline. RetryAfter is set only for rate-limit rejections.
type PipelineError struct {
	Class      ErrorClass
	Message    string
	RetryAfter time.Duration
	Err        error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request.
func (e *PipelineError) Retryable() bool {
	return e.Class == ErrClassRateLimit || e.Class == ErrClassGeneration
}

// NewInputRejectedError builds a fatal input-validation error.
func NewInputRejectedError(message string) *PipelineError {
	return &PipelineError{Class: ErrClassInputRejected, Message: message}
}

// NewPromptInjectionError builds a fatal injection-rejection error.
func NewPromptInjectionError(message string) *PipelineError {
	return &PipelineError{Class: ErrClassPromptInjection, Message: message}
}

// NewRateLimitError builds a retryable rate-limit error carrying the time
// until the current window resets.
func NewRateLimitError(retryAfter time.Duration) *PipelineError {
	return &PipelineError{
		Class:      ErrClassRateLimit,
		Message:    fmt.Sprintf("rate limit exceeded, retry in %s", retryAfter.Round(time.Second)),
		RetryAfter: retryAfter,
	}
}

// NewBudgetExceededError builds a budget rejection error.
func NewBudgetExceededError(message string) *PipelineError {
	return &PipelineError{Class: ErrClassBudget, Message: message}
}

// NewGenerationError wraps a generation-service failure, preserving the
// original error for diagnostics.
func NewGenerationError(message string, err error) *PipelineError {
	return &PipelineError{Class: ErrClassGeneration, Message: message, Err: err}
}

// ClassOf extracts the error class from err, or empty if err is not a
// PipelineError.
func ClassOf(err error) ErrorClass {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Class
	}
	return ""
}
