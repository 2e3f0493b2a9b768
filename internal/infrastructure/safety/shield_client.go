package safety

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/safety"
)

const apiVersion = "2024-09-01"

// ShieldClient calls the Content Safety prompt-shield endpoint to detect
// injection and jailbreak attempts.
type ShieldClient struct {
	httpClient *resty.Client
}

// NewShieldClient creates a Resty-backed prompt-shield client.
func NewShieldClient(endpoint, apiKey string) *ShieldClient {
	return &ShieldClient{
		httpClient: resty.New().
			SetBaseURL(endpoint).
			SetHeader("Content-Type", "application/json").
			SetHeader("Ocp-Apim-Subscription-Key", apiKey).
			SetTimeout(10 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(250 * time.Millisecond),
	}
}

type shieldRequest struct {
	UserPrompt string   `json:"userPrompt"`
	Documents  []string `json:"documents"`
}

type shieldResponse struct {
	UserPromptAnalysis struct {
		AttackDetected bool `json:"attackDetected"`
	} `json:"userPromptAnalysis"`
}

// DetectInjection analyzes the user prompt. Any transport or protocol
// failure is returned as an error so the gate's failure policy decides.
func (c *ShieldClient) DetectInjection(ctx context.Context, text string) (*domain.InjectionVerdict, error) {
	var result shieldResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("api-version", apiVersion).
		SetBody(shieldRequest{UserPrompt: text, Documents: []string{}}).
		SetResult(&result).
		Post("/contentsafety/text:shieldPrompt")
	if err != nil {
		return nil, fmt.Errorf("prompt shield request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("prompt shield returned %d: %s", resp.StatusCode(), resp.String())
	}

	if result.UserPromptAnalysis.AttackDetected {
		return &domain.InjectionVerdict{
			IsSafe:     false,
			AttackType: "prompt_injection",
			Reason:     "attack detected in user prompt",
		}, nil
	}
	return &domain.InjectionVerdict{IsSafe: true}, nil
}

// Ensure interface compliance.
var _ domain.InjectionChecker = (*ShieldClient)(nil)
