package safety

import "context"

// InjectionVerdict is the outcome of the prompt-injection check.
type InjectionVerdict struct {
	IsSafe     bool
	AttackType string
	Reason     string
}

// ModerationVerdict is the outcome of the category-severity moderation
// check after thresholds have been applied. IsSafe holds exactly when
// ViolatedCategories is empty.
type ModerationVerdict struct {
	IsSafe             bool
	ViolatedCategories []string
	CategoryScores     map[string]int
	BlockReason        string
}

// InjectionChecker detects injection and jailbreak attempts in user text.
type InjectionChecker interface {
	DetectInjection(ctx context.Context, text string) (*InjectionVerdict, error)
}

// ModerationChecker scores user text per moderation category on the 0-6
// severity scale. Threshold application is the gate's job.
type ModerationChecker interface {
	AnalyzeText(ctx context.Context, text string) (map[string]int, error)
}
