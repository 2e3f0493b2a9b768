package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPService delivers turn notifications via HTTP POST. A service built
// with an empty URL is a no-op.
type HTTPService struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewHTTPService creates a new HTTP-based webhook service.
func NewHTTPService(url string, log zerolog.Logger) *HTTPService {
	return &HTTPService{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:        log.With().Str("component", "webhook").Logger(),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

var _ Service = (*HTTPService)(nil)

// NotifyTurnCompleted fires after a turn's state has been persisted.
func (s *HTTPService) NotifyTurnCompleted(ctx context.Context, threadID string, filtered bool) error {
	if s.url == "" {
		return nil
	}

	payload := TurnPayload{
		ThreadID:    threadID,
		Event:       "chat.turn.completed",
		Filtered:    filtered,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return s.send(ctx, payload)
}

func (s *HTTPService) send(ctx context.Context, payload TurnPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create webhook request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "taskagent-chat/1.0")
		req.Header.Set("X-TaskAgent-Event", payload.Event)
		req.Header.Set("X-TaskAgent-Thread-ID", payload.ThreadID)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("send webhook (attempt %d/%d): %w", attempt, s.maxRetries, err)
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("webhook delivery failed")

			if attempt < s.maxRetries {
				time.Sleep(s.retryDelay)
				continue
			}
			break
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Debug().Int("status", resp.StatusCode).Str("thread_id", payload.ThreadID).Msg("webhook delivered")
			return nil
		}

		lastErr = fmt.Errorf("webhook returned status %d (attempt %d/%d)", resp.StatusCode, attempt, s.maxRetries)
		s.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("webhook delivery failed")

		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	return lastErr
}
