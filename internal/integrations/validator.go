// Package integrations holds the clients for services the marketplace depends
// on but does not own: evidence validation, image hosting and mail.
package integrations

import (
	"context"
	"fmt"
	"time"

	"timebank/internal/featureflags"
	"timebank/internal/middleware"
	"timebank/internal/observability"
)

// ValidationResult is the advisory verdict on a pair of evidence photos.
type ValidationResult struct {
	ConfidenceScore int    `json:"confidence_score"`
	Explanation     string `json:"explanation"`
	Passed          bool   `json:"passed"`
}

// Validator judges before/after photos against a task prompt.
type Validator interface {
	Validate(ctx context.Context, beforeURL, afterURL, prompt string) (ValidationResult, error)
}

const (
	MockConfidenceScore = 95
	MockExplanation     = "Mock AI Validation: The after photo shows significant progress that aligns with the task description. Looks good!"
	SkippedExplanation  = "Validation skipped"
	passThreshold       = 70
)

// MockValidator approves every submission with a fixed score.
type MockValidator struct {
	Delay time.Duration
}

func (v MockValidator) Validate(ctx context.Context, beforeURL, afterURL, prompt string) (ValidationResult, error) {
	if v.Delay > 0 {
		select {
		case <-ctx.Done():
			return ValidationResult{}, ctx.Err()
		case <-time.After(v.Delay):
		}
	}
	middleware.Logger.DebugContext(ctx, "mock validation invoked",
		"before_url", beforeURL, "after_url", afterURL, "prompt_len", len(prompt))
	return ValidationResult{
		ConfidenceScore: MockConfidenceScore,
		Explanation:     MockExplanation,
		Passed:          MockConfidenceScore >= passThreshold,
	}, nil
}

// FlaggedValidator calls Next only while the ai_validation flag is on for
// the submitting user, and records latency.
type FlaggedValidator struct {
	Next  Validator
	Flags *featureflags.Manager
}

// ForUser returns a Validator bound to userID for flag evaluation.
func (v FlaggedValidator) ForUser(userID uint) Validator {
	return userValidator{parent: v, userID: userID}
}

type userValidator struct {
	parent FlaggedValidator
	userID uint
}

func (u userValidator) Validate(ctx context.Context, beforeURL, afterURL, prompt string) (ValidationResult, error) {
	if !u.parent.Flags.Enabled(featureflags.AIValidation, u.userID) || u.parent.Next == nil {
		return ValidationResult{Explanation: SkippedExplanation, Passed: true}, nil
	}
	start := time.Now()
	res, err := u.parent.Next.Validate(ctx, beforeURL, afterURL, prompt)
	observability.ValidationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return ValidationResult{}, fmt.Errorf("validate evidence: %w", err)
	}
	return res, nil
}

// ValidationPrompt builds the instruction sent with the photos.
func ValidationPrompt(title, description, category string) string {
	return fmt.Sprintf(
		"Compare the before and after photos for the task %q (%s). Task description: %s. "+
			"Report whether the after photo shows progress that aligns with the task, "+
			"a confidence score from 0 to 100 and a short explanation.",
		title, category, description)
}
