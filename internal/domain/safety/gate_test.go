package safety

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInjection struct {
	verdict *InjectionVerdict
	err     error
}

func (s *stubInjection) DetectInjection(context.Context, string) (*InjectionVerdict, error) {
	return s.verdict, s.err
}

type stubModeration struct {
	scores map[string]int
	err    error
}

func (s *stubModeration) AnalyzeText(context.Context, string) (map[string]int, error) {
	return s.scores, s.err
}

func newTestGate(injection InjectionChecker, moderation ModerationChecker, cfg Config) *Gate {
	return NewGate(injection, moderation, cfg, zerolog.Nop())
}

func TestEvaluate_ReductionTable(t *testing.T) {
	tests := []struct {
		name        string
		injection   *InjectionVerdict
		scores      map[string]int
		wantAllowed bool
	}{
		{
			name:        "both safe",
			injection:   &InjectionVerdict{IsSafe: true},
			scores:      map[string]int{"Hate": 0, "Violence": 2},
			wantAllowed: true,
		},
		{
			name:        "injection unsafe moderation safe",
			injection:   &InjectionVerdict{IsSafe: false, AttackType: "prompt_injection"},
			scores:      map[string]int{"Hate": 0},
			wantAllowed: false,
		},
		{
			name:        "injection safe moderation unsafe",
			injection:   &InjectionVerdict{IsSafe: true},
			scores:      map[string]int{"Violence": 6},
			wantAllowed: false,
		},
		{
			name:        "both unsafe",
			injection:   &InjectionVerdict{IsSafe: false, AttackType: "jailbreak"},
			scores:      map[string]int{"Violence": 6},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := newTestGate(
				&stubInjection{verdict: tt.injection},
				&stubModeration{scores: tt.scores},
				Config{DefaultThreshold: 4},
			)
			decision := gate.Evaluate(context.Background(), "some message")
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, BlockedMessage, decision.Message)
			}
		})
	}
}

func TestEvaluate_InjectionFailureBlocksDespiteSafeModeration(t *testing.T) {
	gate := newTestGate(
		&stubInjection{err: errors.New("connection refused")},
		&stubModeration{scores: map[string]int{"Hate": 0}},
		Config{DefaultThreshold: 4},
	)

	decision := gate.Evaluate(context.Background(), "hello")
	assert.False(t, decision.Allowed)
	assert.Equal(t, CheckFailedMessage, decision.Message)
}

func TestEvaluate_ModerationFailureAllowsWithSafeInjection(t *testing.T) {
	gate := newTestGate(
		&stubInjection{verdict: &InjectionVerdict{IsSafe: true}},
		&stubModeration{err: errors.New("timeout")},
		Config{DefaultThreshold: 4},
	)

	decision := gate.Evaluate(context.Background(), "hello")
	assert.True(t, decision.Allowed)
}

func TestEvaluate_FailurePoliciesAreConfigurable(t *testing.T) {
	// Inverted policies: injection fails open, moderation fails secure.
	gate := newTestGate(
		&stubInjection{err: errors.New("down")},
		&stubModeration{scores: map[string]int{}},
		Config{
			InjectionFailurePolicy:  FailOpen,
			ModerationFailurePolicy: FailSecure,
			DefaultThreshold:        4,
		},
	)
	decision := gate.Evaluate(context.Background(), "hello")
	assert.True(t, decision.Allowed)

	gate = newTestGate(
		&stubInjection{verdict: &InjectionVerdict{IsSafe: true}},
		&stubModeration{err: errors.New("down")},
		Config{
			InjectionFailurePolicy:  FailOpen,
			ModerationFailurePolicy: FailSecure,
			DefaultThreshold:        4,
		},
	)
	decision = gate.Evaluate(context.Background(), "hello")
	assert.False(t, decision.Allowed)
}

func TestEvaluate_PerCategoryThresholdOverride(t *testing.T) {
	gate := newTestGate(
		&stubInjection{verdict: &InjectionVerdict{IsSafe: true}},
		&stubModeration{scores: map[string]int{"Hate": 2, "Violence": 2}},
		Config{
			DefaultThreshold:   4,
			CategoryThresholds: map[string]int{"Hate": 2},
		},
	)

	decision := gate.Evaluate(context.Background(), "hello")
	require.False(t, decision.Allowed)
	require.NotNil(t, decision.Moderation)
	assert.Equal(t, []string{"Hate"}, decision.Moderation.ViolatedCategories)
}

func TestEvaluate_BlockMessageNeverLeaksDetails(t *testing.T) {
	gate := newTestGate(
		&stubInjection{verdict: &InjectionVerdict{IsSafe: true}},
		&stubModeration{scores: map[string]int{"SelfHarm": 6}},
		Config{DefaultThreshold: 4},
	)

	decision := gate.Evaluate(context.Background(), "hello")
	require.False(t, decision.Allowed)
	assert.NotContains(t, decision.Message, "SelfHarm")
	assert.NotContains(t, decision.Message, "6")
	assert.Equal(t, BlockedMessage, decision.Message)
}

func TestEvaluate_EmptyInputShortCircuits(t *testing.T) {
	// Checkers that would fail if ever called.
	gate := newTestGate(
		&stubInjection{err: errors.New("must not be called")},
		&stubModeration{err: errors.New("must not be called")},
		Config{DefaultThreshold: 4},
	)

	for _, text := range []string{"", "   ", "\n\t"} {
		decision := gate.Evaluate(context.Background(), text)
		assert.True(t, decision.Allowed)
	}
}
