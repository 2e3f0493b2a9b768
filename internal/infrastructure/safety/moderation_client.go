package safety

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/safety"
)

// ModerationClient calls the Content Safety text-analysis endpoint, which
// scores text per category on the 0-6 severity scale.
type ModerationClient struct {
	httpClient *resty.Client
}

// NewModerationClient creates a Resty-backed moderation client.
func NewModerationClient(endpoint, apiKey string) *ModerationClient {
	return &ModerationClient{
		httpClient: resty.New().
			SetBaseURL(endpoint).
			SetHeader("Content-Type", "application/json").
			SetHeader("Ocp-Apim-Subscription-Key", apiKey).
			SetTimeout(10 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(250 * time.Millisecond),
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	CategoriesAnalysis []struct {
		Category string `json:"category"`
		Severity int    `json:"severity"`
	} `json:"categoriesAnalysis"`
}

// AnalyzeText returns the per-category severity scores. Failures are
// returned as errors so the gate's failure policy decides.
func (c *ModerationClient) AnalyzeText(ctx context.Context, text string) (map[string]int, error) {
	var result analyzeResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("api-version", apiVersion).
		SetBody(analyzeRequest{Text: text}).
		SetResult(&result).
		Post("/contentsafety/text:analyze")
	if err != nil {
		return nil, fmt.Errorf("moderation request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("moderation returned %d: %s", resp.StatusCode(), resp.String())
	}

	scores := make(map[string]int, len(result.CategoriesAnalysis))
	for _, entry := range result.CategoriesAnalysis {
		scores[entry.Category] = entry.Severity
	}
	return scores, nil
}

// Ensure interface compliance.
var _ domain.ModerationChecker = (*ModerationClient)(nil)
