package safety

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Refusal messages are deliberately generic: the caller never learns which
// check fired, which categories scored, or what attack was detected.
const (
	BlockedMessage     = "I'm sorry, but I can't help with that request."
	CheckFailedMessage = "The security check could not be completed. Please try again."
)

// Decision is the gate's combined allow/block outcome. The verdicts are for
// server-side logging and metrics only and must never reach the client.
type Decision struct {
	Allowed    bool
	Message    string
	Injection  *InjectionVerdict
	Moderation *ModerationVerdict
}

// Config tunes the gate's reduction rule.
type Config struct {
	InjectionFailurePolicy  FailurePolicy
	ModerationFailurePolicy FailurePolicy
	// DefaultThreshold applies to every category not present in
	// CategoryThresholds. A category blocks when score >= threshold.
	DefaultThreshold   int
	CategoryThresholds map[string]int
}

// Gate runs the injection check and the moderation check concurrently
// against one input and reduces both verdicts to a single decision.
type Gate struct {
	injection  InjectionChecker
	moderation ModerationChecker
	cfg        Config
	log        zerolog.Logger
}

// NewGate builds the safety gate.
func NewGate(injection InjectionChecker, moderation ModerationChecker, cfg Config, log zerolog.Logger) *Gate {
	if cfg.InjectionFailurePolicy == "" {
		cfg.InjectionFailurePolicy = DefaultInjectionFailurePolicy
	}
	if cfg.ModerationFailurePolicy == "" {
		cfg.ModerationFailurePolicy = DefaultModerationFailurePolicy
	}
	return &Gate{
		injection:  injection,
		moderation: moderation,
		cfg:        cfg,
		log:        log.With().Str("component", "safety-gate").Logger(),
	}
}

type injectionResult struct {
	verdict *InjectionVerdict
	err     error
}

type moderationResult struct {
	scores map[string]int
	err    error
}

// Evaluate runs both checks concurrently, waits for both, and applies the
// reduction rule. Empty or whitespace-only input short-circuits to allowed;
// such messages never reach the model anyway.
func (g *Gate) Evaluate(ctx context.Context, text string) Decision {
	if strings.TrimSpace(text) == "" {
		return Decision{Allowed: true}
	}

	injCh := make(chan injectionResult, 1)
	modCh := make(chan moderationResult, 1)

	go func() {
		verdict, err := g.injection.DetectInjection(ctx, text)
		injCh <- injectionResult{verdict: verdict, err: err}
	}()
	go func() {
		scores, err := g.moderation.AnalyzeText(ctx, text)
		modCh <- moderationResult{scores: scores, err: err}
	}()

	inj := <-injCh
	mod := <-modCh

	return g.reduce(inj, mod)
}

func (g *Gate) reduce(inj injectionResult, mod moderationResult) Decision {
	if inj.err != nil {
		g.log.Error().Err(inj.err).
			Str("policy", string(g.cfg.InjectionFailurePolicy)).
			Msg("injection check failed")
		if g.cfg.InjectionFailurePolicy == FailSecure {
			return Decision{Allowed: false, Message: CheckFailedMessage}
		}
		inj.verdict = &InjectionVerdict{IsSafe: true}
	}

	var moderation *ModerationVerdict
	if mod.err != nil {
		g.log.Warn().Err(mod.err).
			Str("policy", string(g.cfg.ModerationFailurePolicy)).
			Msg("moderation check failed")
		if g.cfg.ModerationFailurePolicy == FailSecure {
			return Decision{Allowed: false, Message: CheckFailedMessage}
		}
		moderation = &ModerationVerdict{IsSafe: true}
	} else {
		moderation = g.applyThresholds(mod.scores)
	}

	if !inj.verdict.IsSafe {
		g.log.Warn().
			Str("attack_type", inj.verdict.AttackType).
			Msg("message blocked by injection check")
		return Decision{
			Allowed:    false,
			Message:    BlockedMessage,
			Injection:  inj.verdict,
			Moderation: moderation,
		}
	}

	if !moderation.IsSafe {
		g.log.Warn().
			Strs("categories", moderation.ViolatedCategories).
			Msg("message blocked by moderation check")
		return Decision{
			Allowed:    false,
			Message:    BlockedMessage,
			Injection:  inj.verdict,
			Moderation: moderation,
		}
	}

	return Decision{Allowed: true, Injection: inj.verdict, Moderation: moderation}
}

func (g *Gate) applyThresholds(scores map[string]int) *ModerationVerdict {
	verdict := &ModerationVerdict{
		IsSafe:         true,
		CategoryScores: scores,
	}
	for category, score := range scores {
		threshold := g.cfg.DefaultThreshold
		if override, ok := g.cfg.CategoryThresholds[category]; ok {
			threshold = override
		}
		if score >= threshold {
			verdict.ViolatedCategories = append(verdict.ViolatedCategories, category)
		}
	}
	if len(verdict.ViolatedCategories) > 0 {
		sort.Strings(verdict.ViolatedCategories)
		verdict.IsSafe = false
		verdict.BlockReason = "moderation threshold exceeded"
	}
	return verdict
}
